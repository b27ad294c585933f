package cvd

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// sparseMagic is the Android sparse image signature.
var sparseMagic = []byte{0x3A, 0xFF, 0x26, 0xED}

// sparseCandidates are the images Android builds may ship in sparse form.
var sparseCandidates = []string{"super.img", "userdata.img"}

// IsSparse reports whether the file at path carries the Android sparse
// image magic.
func IsSparse(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, len(sparseMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(magic, sparseMagic), nil
}

// TransformSparseImages converts the sparse-capable images in dir to raw
// form in place, using the simg2img binary the Cuttlefish host package
// ships. Raw images are left untouched.
func TransformSparseImages(dir string, env []string) error {
	for _, img := range sparseCandidates {
		path := filepath.Join(dir, img)

		sparse, err := IsSparse(path)
		if err != nil {
			return errors.Wrapf(err, "probing %s", img)
		}
		if !sparse {
			continue
		}

		logrus.WithField("image", img).Info("converting sparse image")
		tmp := path + ".tmp"
		if err := runHostTool(dir, env, "simg2img", path, tmp); err != nil {
			return err
		}
		if err := os.Rename(tmp, path); err != nil {
			return errors.Wrapf(err, "replacing %s with its raw form", img)
		}
	}
	return nil
}

// runHostTool executes one of the prebuilt binaries from the Cuttlefish
// host package's bin directory.
func runHostTool(dir string, env []string, tool string, args ...string) error {
	cmd := exec.Command(filepath.Join(dir, "bin", tool), args...)
	cmd.Env = env
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err) {
			return errors.Wrapf(err, "can't find %s in %s", tool, filepath.Join(dir, "bin"))
		}
		return errors.Wrapf(err, "running %s", tool)
	}
	return nil
}
