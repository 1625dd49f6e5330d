package hash

import (
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/eargollo/indexer/internal/indexerr"
	"github.com/zeebo/blake3"
)

// Size is the digest length in bytes; the hex form is twice as long.
const Size = 32

// Hasher computes BLAKE3-256 digests of file contents. The zero value hashes
// raw bytes. With StrictText set, the content must be valid UTF-8 and files
// that are not fail with a read error; digests of valid files are the same
// in both modes.
type Hasher struct {
	StrictText bool
}

// HashFile returns the BLAKE3-256 digest of the file at path as lowercase hex,
// hashing raw bytes.
func HashFile(path string) (string, error) {
	return Hasher{}.HashFile(path)
}

// HashFile checks that path exists, then reads it and returns its digest.
// A missing path yields a KindNotFound error naming the path; any later
// failure yields KindRead.
func (h Hasher) HashFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", indexerr.New(indexerr.KindNotFound, path, "File does not exist: "+path, err)
		}
		return "", readError(path, err)
	}

	f, err := os.Open(path) // #nosec G304 -- caller supplies the path to hash
	if err != nil {
		return "", readError(path, err)
	}
	defer f.Close()

	if h.StrictText {
		data, err := io.ReadAll(f)
		if err != nil {
			return "", readError(path, err)
		}
		if !utf8.Valid(data) {
			return "", indexerr.New(indexerr.KindRead, path, path+": stream did not contain valid UTF-8", nil)
		}
		return HashBytes(data), nil
	}

	d := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(d, f, buf); err != nil {
		return "", readError(path, err)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

// HashBytes returns the BLAKE3-256 digest of data as lowercase hex.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func readError(path string, err error) error {
	return indexerr.New(indexerr.KindRead, path, err.Error(), err)
}
