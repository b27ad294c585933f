package cvd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-cvdisk/internal/layout"
)

const blankPrefix = "blank:"

// Resolve turns a component table into partition specs backed by the
// image files in dir. Blank components become zero sources of their
// declared size; everything else is stat'd for its content length. The
// resulting specs keep the table's order.
func Resolve(dir string, components []Component) ([]layout.PartitionSpec, error) {
	specs := make([]layout.PartitionSpec, 0, len(components))

	for _, c := range components {
		spec := layout.PartitionSpec{Name: c.Name, Type: layout.TypeLinuxFilesystem}

		if size, ok := strings.CutPrefix(c.Image, blankPrefix); ok {
			n, err := strconv.ParseUint(size, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("component %q: bad blank size %q: %w", c.Name, size, err)
			}
			spec.Size = n
			spec.Source = layout.BlankSource{}
		} else {
			path := filepath.Join(dir, c.Image)
			fi, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("component %q: %w", c.Name, err)
			}
			spec.Size = uint64(fi.Size())
			spec.Source = layout.FileSource(path)
		}

		specs = append(specs, spec)
	}

	return specs, nil
}
