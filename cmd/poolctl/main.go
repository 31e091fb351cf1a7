package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veilswap/config"
	"veilswap/core/events"
	"veilswap/core/state"
	"veilswap/native/bank"
	"veilswap/native/pool"
	"veilswap/observability/logging"
	"veilswap/observability/metrics"
	"veilswap/storage"
)

const defaultConfig = "./pool.toml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "pause":
		runSetPaused(os.Args[2:], true)
	case "unpause":
		runSetPaused(os.Args[2:], false)
	case "set-fee":
		runSetFee(os.Args[2:])
	case "withdraw-fees":
		runWithdrawFees(os.Args[2:])
	case "commit-hash":
		runCommitHash(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: poolctl <init|status|pause|unpause|set-fee|withdraw-fees|commit-hash|serve> [flags]")
}

// session bundles everything a subcommand needs to run one transition against
// the durable store.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      storage.Database
	manager *state.Manager
	engine  *pool.Engine
	events  *events.Recorder
}

func open(configPath string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup("poolctl", cfg.Environment)

	moduleAddr, err := parseAddr(cfg.ModuleAddress)
	if err != nil {
		return nil, fmt.Errorf("ModuleAddress: %w", err)
	}
	token0, err := parseAddr(cfg.Token0)
	if err != nil {
		return nil, fmt.Errorf("Token0: %w", err)
	}
	token1, err := parseAddr(cfg.Token1)
	if err != nil {
		return nil, fmt.Errorf("Token1: %w", err)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	manager := state.NewManager(db)
	recorder := &events.Recorder{}

	engine := pool.NewEngine(moduleAddr, token0, token1)
	engine.SetState(pool.NewStore(manager))
	engine.SetTokens(bank.NewVault(bank.NewLedger(manager), moduleAddr))
	engine.SetEmitter(metrics.NewEmitter(metrics.Pool(), recorder))

	return &session{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		manager: manager,
		engine:  engine,
		events:  recorder,
	}, nil
}

func (s *session) close() { s.db.Close() }

// settle commits the staged transition and logs the events it produced.
func (s *session) settle() error {
	if err := s.manager.Commit(); err != nil {
		return err
	}
	for _, evt := range s.events.Events() {
		s.logger.Info("event emitted", "type", evt.EventType())
	}
	return nil
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	ownerHex := fs.String("owner", "", "Hex address of the pool owner")
	treasuryHex := fs.String("treasury", "", "Hex address of the treasury account")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	owner, err := parseAddr(*ownerHex)
	if err != nil {
		fatal(fmt.Errorf("owner: %w", err))
	}
	treasury, err := parseAddr(*treasuryHex)
	if err != nil {
		fatal(fmt.Errorf("treasury: %w", err))
	}
	if err := s.engine.Init(owner, treasury, s.cfg.FeeBps, s.cfg.FlashFeeBps); err != nil {
		fatal(err)
	}
	if err := s.settle(); err != nil {
		fatal(err)
	}
	s.logger.Info("pool initialised",
		"owner", *ownerHex,
		"treasury", *treasuryHex,
		"feeBps", s.cfg.FeeBps,
		"flashFeeBps", s.cfg.FlashFeeBps,
	)
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	record, err := s.engine.PoolView()
	if err != nil {
		fatal(err)
	}
	metrics.Pool().SetReserves(
		float64(record.Reserve0.Uint64()),
		float64(record.Reserve1.Uint64()),
	)
	fmt.Printf("owner:        %x\n", record.Owner)
	fmt.Printf("treasury:     %x\n", record.Treasury)
	fmt.Printf("paused:       %v\n", record.Paused)
	fmt.Printf("feeBps:       %d\n", record.FeeBps)
	fmt.Printf("flashFeeBps:  %d\n", record.FlashFeeBps)
	fmt.Printf("reserve0:     %s\n", record.Reserve0.Dec())
	fmt.Printf("reserve1:     %s\n", record.Reserve1.Dec())
	fmt.Printf("treasuryFees: %s\n", record.AccruedTreasuryFees0.Dec())
	fmt.Printf("lpFees:       %s\n", record.AccruedLPFees0.Dec())
	fmt.Printf("volume0:      %s\n", record.TotalVolume0.Dec())
	fmt.Printf("volume1:      %s\n", record.TotalVolume1.Dec())
}

func runSetPaused(args []string, paused bool) {
	name := "unpause"
	if paused {
		name = "pause"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	callerHex := fs.String("caller", "", "Hex address of the pool owner")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	caller, err := parseAddr(*callerHex)
	if err != nil {
		fatal(fmt.Errorf("caller: %w", err))
	}
	if paused {
		err = s.engine.Pause(caller)
	} else {
		err = s.engine.Unpause(caller)
	}
	if err != nil {
		fatal(err)
	}
	if err := s.settle(); err != nil {
		fatal(err)
	}
	s.logger.Info("pause flag updated", "paused", paused)
}

func runSetFee(args []string) {
	fs := flag.NewFlagSet("set-fee", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	callerHex := fs.String("caller", "", "Hex address of the pool owner")
	bps := fs.Uint64("bps", 0, "New trading fee in basis points")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	caller, err := parseAddr(*callerHex)
	if err != nil {
		fatal(fmt.Errorf("caller: %w", err))
	}
	if err := s.engine.SetFee(caller, *bps); err != nil {
		fatal(err)
	}
	if err := s.settle(); err != nil {
		fatal(err)
	}
	s.logger.Info("fee updated", "feeBps", *bps)
}

func runWithdrawFees(args []string) {
	fs := flag.NewFlagSet("withdraw-fees", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	callerHex := fs.String("caller", "", "Hex address of the pool owner")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	caller, err := parseAddr(*callerHex)
	if err != nil {
		fatal(fmt.Errorf("caller: %w", err))
	}
	if err := s.engine.WithdrawTreasuryFees(caller); err != nil {
		fatal(err)
	}
	if err := s.settle(); err != nil {
		fatal(err)
	}
	s.logger.Info("treasury fees withdrawn")
}

func runCommitHash(args []string) {
	fs := flag.NewFlagSet("commit-hash", flag.ExitOnError)
	amountStr := fs.String("amount", "", "Swap input amount (decimal)")
	saltStr := fs.String("salt", "", "Commitment salt (decimal)")
	fs.Parse(args)

	amount, err := uint256.FromDecimal(strings.TrimSpace(*amountStr))
	if err != nil {
		fatal(fmt.Errorf("amount: %w", err))
	}
	salt, err := uint256.FromDecimal(strings.TrimSpace(*saltStr))
	if err != nil {
		fatal(fmt.Errorf("salt: %w", err))
	}
	hash := pool.CommitHash(amount, salt)
	fmt.Printf("%s\n", hex.EncodeToString(hash[:]))
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the pool config file")
	fs.Parse(args)

	s, err := open(*configPath)
	if err != nil {
		fatal(err)
	}
	defer s.close()

	listen := strings.TrimSpace(s.cfg.MetricsListen)
	if listen == "" {
		fatal(fmt.Errorf("MetricsListen not set in config"))
	}
	if record, err := s.engine.PoolView(); err == nil {
		metrics.Pool().SetReserves(
			float64(record.Reserve0.Uint64()),
			float64(record.Reserve1.Uint64()),
		)
	}
	http.Handle("/metrics", promhttp.Handler())
	s.logger.Info("metrics listener started", "addr", listen)
	if err := http.ListenAndServe(listen, nil); err != nil {
		fatal(err)
	}
}

func parseAddr(s string) ([20]byte, error) {
	var addr [20]byte
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return addr, err
	}
	if len(raw) != 20 {
		return addr, fmt.Errorf("expected 20-byte address, got %d bytes", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "poolctl:", err)
	os.Exit(1)
}
