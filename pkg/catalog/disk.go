package catalog

import (
	"bytes"
	"context"
	"io"

	"github.com/matst80/store-locator/pkg/common/jsoncompat"
	"github.com/matst80/store-locator/pkg/storage"
	"github.com/matst80/store-locator/pkg/stores"
	"github.com/pkg/errors"
)

const StoresFile = "stores.json"

// DiskProvider reads <root>/<country>/stores.json.
type DiskProvider struct {
	Storage  *storage.DiskStorage
	FileName string
}

func NewDiskProvider(ds *storage.DiskStorage) *DiskProvider {
	return &DiskProvider{Storage: ds, FileName: StoresFile}
}

func (p *DiskProvider) Load(_ context.Context) ([]stores.Store, error) {
	all := []stores.Store{}
	if err := p.Storage.LoadJson(&all, p.FileName); err != nil {
		return nil, err
	}
	return all, nil
}

// Save validates the uploaded catalog and atomically replaces the file.
// The parsed stores are returned so the caller can publish them directly.
func (p *DiskProvider) Save(r io.Reader) ([]stores.Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	all := []stores.Store{}
	if err = jsoncompat.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrapf(ErrInvalidStore, "decode catalog: %v", err)
	}
	if err = Validate(all); err != nil {
		return nil, err
	}
	if err = p.Storage.SaveRaw(bytes.NewReader(data), p.FileName); err != nil {
		return nil, err
	}
	return all, nil
}
