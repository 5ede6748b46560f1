package vocabulary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/ohdsi/condenser/pkg/api/atlas"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/yaml"
)

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() (err error) {
	for i := len(m.closers) - 1; i >= 0; i-- {
		if cerr := m.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns the content of file. Compressed files (gzip, xz, zstd, ...) are
// decompressed on the fly, anything else is returned as is.
func Open(ctx context.Context, file string) (io.ReadCloser, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	format, stream, err := archives.Identify(ctx, filepath.Base(file), f)
	if errors.Is(err, archives.NoMatch) {
		return &multiCloser{Reader: stream, closers: []io.Closer{f}}, nil
	} else if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to identify format of %s: %v", file, err)
	}
	decompressor, ok := format.(archives.Decompressor)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("unsupported format %s for %s", format.Extension(), file)
	}
	logrus.Debugf("Decompressing %s as %s", file, format.Extension())
	reader, err := decompressor.OpenReader(stream)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decompress %s: %v", file, err)
	}
	return &multiCloser{Reader: reader, closers: []io.Closer{f, reader}}, nil
}

func unmarshalFile(ctx context.Context, file string, obj interface{}) error {
	reader, err := Open(ctx, file)
	if err != nil {
		return err
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", file, err)
	}
	if err := yaml.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to parse %s: %v", file, err)
	}
	return nil
}

func marshalFile(file string, obj interface{}) error {
	var data []byte
	var err error
	if strings.HasSuffix(file, ".json") {
		data, err = json.MarshalIndent(obj, "", "  ")
	} else {
		data, err = yaml.Marshal(obj)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0660)
}

// LoadVocabulary reads and merges the given vocabulary files. A concept may
// only be defined once across all files.
func LoadVocabulary(ctx context.Context, files ...string) (*atlas.Vocabulary, error) {
	merged := &atlas.Vocabulary{}
	seen := map[int64]string{}
	for _, file := range files {
		vocabulary := &atlas.Vocabulary{}
		if err := unmarshalFile(ctx, file, vocabulary); err != nil {
			return nil, err
		}
		if err := vocabulary.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %v", file, err)
		}
		for _, concept := range vocabulary.Concepts {
			if other, exists := seen[concept.ID]; exists {
				return nil, fmt.Errorf("concept %d is defined in %s and %s", concept.ID, other, file)
			}
			seen[concept.ID] = file
		}
		if merged.Name == "" {
			merged.Name = vocabulary.Name
		}
		merged.Concepts = append(merged.Concepts, vocabulary.Concepts...)
		logrus.Debugf("Loaded %d concepts from %s", len(vocabulary.Concepts), file)
	}
	return merged, nil
}

func LoadConceptSets(ctx context.Context, file string) (*atlas.ConceptSets, error) {
	sets := &atlas.ConceptSets{}
	if err := unmarshalFile(ctx, file, sets); err != nil {
		return nil, err
	}
	if err := sets.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}
	return sets, nil
}

func LoadExpressions(ctx context.Context, file string) (*atlas.Expressions, error) {
	expressions := &atlas.Expressions{}
	if err := unmarshalFile(ctx, file, expressions); err != nil {
		return nil, err
	}
	return expressions, nil
}

// WriteExpressions writes the expressions as yaml, or as json if the file name
// ends with .json.
func WriteExpressions(file string, expressions *atlas.Expressions) error {
	return marshalFile(file, expressions)
}

func WriteVocabulary(file string, vocabulary *atlas.Vocabulary) error {
	return marshalFile(file, vocabulary)
}
