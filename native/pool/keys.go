package pool

var (
	poolKey          = []byte("pool/state")
	commitmentPrefix = []byte("pool/commit/")
)

func commitmentKey(addr [20]byte) []byte {
	buf := make([]byte, 0, len(commitmentPrefix)+20)
	buf = append(buf, commitmentPrefix...)
	buf = append(buf, addr[:]...)
	return buf
}
