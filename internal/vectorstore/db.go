package vectorstore

import (
	"database/sql"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName registers a sqlite driver whose connections expose vec_cosine,
// so similarity ranking runs inside SQL the way pgvector's <=> operator does.
const driverName = "sqlite3_vec"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("vec_cosine", cosineBlobs, true)
		},
	})
}

// cosineBlobs is the SQL-visible cosine similarity over two encoded vectors.
func cosineBlobs(a, b []byte) (float64, error) {
	va, err := DecodeVector(a)
	if err != nil {
		return 0, err
	}
	vb, err := DecodeVector(b)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(va, vb)
}

// Open opens the vector database at the given path with the vec_cosine
// function available on every connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
