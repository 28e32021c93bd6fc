package storage

import (
	"fmt"
	"path"
	"time"
)

// DiskStorage reads and writes files under <RootFolder>/<Country>.
type DiskStorage struct {
	Country    string
	RootFolder string
}

func NewDiskStorage(country, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Country:    country,
		RootFolder: rootFolder,
	}
}

// GetFileName returns the path for name and a temporary sibling used for
// atomic writes.
func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := path.Join(ds.RootFolder, ds.Country, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixNano())
	return fileName, tmpFileName
}

// GetSharedFileName is for files shared by all countries, like the GeoIP database.
func (ds *DiskStorage) GetSharedFileName(name string) string {
	return path.Join(ds.RootFolder, name)
}
