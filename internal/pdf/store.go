package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/afero"

	pdferrors "github.com/a3tai/mcp-pdf-filler/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf/security"
)

// TemplateStore reads template and companion PDFs from one directory.
type TemplateStore struct {
	fs          afero.Fs
	names       *security.PathValidator
	onDisk      bool
	maxFileSize int64
}

// NewTemplateStore serves files from the root of fsys.
func NewTemplateStore(fsys afero.Fs, maxFileSize int64) *TemplateStore {
	names, _ := security.NewPathValidator("/")
	return &TemplateStore{
		fs:          fsys,
		names:       names,
		maxFileSize: maxFileSize,
	}
}

// NewDirectoryStore serves files from dir on the local disk, read-only.
func NewDirectoryStore(dir string, maxFileSize int64) (*TemplateStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template directory is not a directory: %s", dir)
	}

	names, err := security.NewPathValidator(dir)
	if err != nil {
		return nil, err
	}

	return &TemplateStore{
		fs:          afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)),
		names:       names,
		onDisk:      true,
		maxFileSize: maxFileSize,
	}, nil
}

// Directory returns the directory the store reads from.
func (s *TemplateStore) Directory() string {
	if s.onDisk {
		return s.names.GetConfiguredDirectory()
	}
	return "memory"
}

// Read returns the content of name. Every failure is a configuration error.
func (s *TemplateStore) Read(name string) ([]byte, error) {
	if err := s.validate(name); err != nil {
		return nil, err
	}

	info, err := s.fs.Stat(name)
	if os.IsNotExist(err) {
		return nil, pdferrors.New(pdferrors.ErrorTypeConfiguration, "template file not found").WithContext(name)
	}
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConfiguration, "cannot access template file", err).WithContext(name)
	}

	if info.IsDir() {
		return nil, pdferrors.New(pdferrors.ErrorTypeConfiguration, "template path is a directory").WithContext(name)
	}
	if info.Size() == 0 {
		return nil, pdferrors.New(pdferrors.ErrorTypeConfiguration, "template file is empty").WithContext(name)
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeConfiguration,
			"template file too large: %d bytes (max: %d bytes)", info.Size(), s.maxFileSize).WithContext(name)
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeConfiguration, "cannot read template file", err).WithContext(name)
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, pdferrors.New(pdferrors.ErrorTypeConfiguration, "template file is not a PDF").WithContext(name)
	}

	return data, nil
}

// Exists reports whether name is a readable file of the store.
func (s *TemplateStore) Exists(name string) bool {
	if s.validate(name) != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, name)
	return err == nil && ok
}

func (s *TemplateStore) validate(name string) error {
	var err error
	if s.onDisk {
		_, err = s.names.ResolveName(name)
	} else {
		err = s.names.ValidateName(name)
	}
	if err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeConfiguration, "invalid template name", err).WithContext(name)
	}
	return nil
}
