package kv

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB is a persistent Database using LevelDB.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB creates or opens a LevelDB database in the directory path.
func OpenLevelDB(path string) (*LevelDB, func(), error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, nil, err
	}
	return &LevelDB{db: db}, func() { _ = db.Close() }, nil
}

// NewInMemoryLevelDB returns a LevelDB kept entirely in memory, for tests.
func NewInMemoryLevelDB() (*LevelDB, func(), error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, func() {}, err
	}
	return &LevelDB{db: db}, func() { _ = db.Close() }, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (l *LevelDB) Put(key []byte, value []byte) error {
	return l.db.Put(key, value, nil)
}
