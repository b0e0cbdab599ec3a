package source

type (
	// FileID indexes a File in its FileSet.
	FileID uint32
	// FileFlags records how a File was added and what normalization it needed.
	FileFlags uint8
)

const (
	// FileVirtual: текст пришёл из памяти, а не с диска
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM is restored on output.
	FileHadBOM
	// FileNormalizedCRLF means Content had "\r\n" folded to "\n"; Restore puts it back.
	FileNormalizedCRLF
)

// File is one source unit. Content is normalized (no BOM, '\n' line endings),
// so every span and line offset refers to the normalized text.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n' in Content.
	LineIdx []uint32
	// Hash is the sha256 of Content.
	Hash  [32]byte
	Flags FileFlags
}

// LineCol is a 1-based position; Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}
