package storage

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/matst80/store-locator/pkg/logger"
	"github.com/pkg/errors"
)

func (d *DiskStorage) Exists(name string) bool {
	fileName, _ := d.GetFileName(name)
	st, err := os.Stat(fileName)
	return err == nil && !st.IsDir()
}

// Open opens a country file for reading, the caller closes it.
func (d *DiskStorage) Open(name string) (*os.File, error) {
	fileName, _ := d.GetFileName(name)
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", fileName)
	}
	return f, nil
}

func (d *DiskStorage) StreamContent(w io.Writer, name string) (int64, error) {
	file, err := d.Open(name)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return file.WriteTo(w)
}

// writeAtomic writes through a temporary file that is renamed into place
// only after fn and all closes succeed.
func (d *DiskStorage) writeAtomic(name string, fn func(w io.Writer) error) error {
	fileName, tmpFileName := d.GetFileName(name)
	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return errors.Wrapf(err, "create folder for %s", fileName)
	}

	file, err := os.Create(tmpFileName)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmpFileName)
	}

	if err = fn(file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFileName)
		return err
	}
	if err = file.Close(); err != nil {
		_ = os.Remove(tmpFileName)
		return errors.Wrapf(err, "close %s", tmpFileName)
	}
	if err = os.Rename(tmpFileName, fileName); err != nil {
		_ = os.Remove(tmpFileName)
		return errors.Wrapf(err, "rename %s", tmpFileName)
	}
	logger.Get().Debugf("saved file %s", fileName)
	return nil
}

func (d *DiskStorage) SaveJson(data any, name string) error {
	return d.writeAtomic(name, func(w io.Writer) error {
		return errors.Wrap(jsoncompat.NewEncoder(w).Encode(data), "encode json")
	})
}

func (d *DiskStorage) LoadJson(data any, name string) error {
	file, err := d.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	err = jsoncompat.NewDecoder(file).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}

// SaveRaw stores r verbatim, used for uploaded catalogs that were already validated.
func (d *DiskStorage) SaveRaw(r io.Reader, name string) error {
	return d.writeAtomic(name, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return errors.Wrap(err, "copy content")
	})
}

func (d *DiskStorage) SaveGzippedJson(data any, name string) error {
	return d.writeAtomic(name, func(w io.Writer) error {
		zipWriter := gzip.NewWriter(w)
		if err := jsoncompat.NewEncoder(zipWriter).Encode(data); err != nil {
			_ = zipWriter.Close()
			return errors.Wrap(err, "encode gzipped json")
		}
		return errors.Wrap(zipWriter.Close(), "close gzip writer")
	})
}

func (d *DiskStorage) LoadGzippedJson(data any, name string) error {
	file, err := d.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrapf(err, "gzip header %s", name)
	}
	defer zipReader.Close()

	err = jsoncompat.NewDecoder(zipReader).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}
