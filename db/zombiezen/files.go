package zombiezen

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const fileColumns = `id, filename, mimetype, size, uploaded_by, created`

func newFileFromStmt(stmt *sqlite.Stmt) (*db.File, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	return &db.File{
		ID:         stmt.GetText("id"),
		Filename:   stmt.GetText("filename"),
		Mimetype:   stmt.GetText("mimetype"),
		Size:       stmt.GetInt64("size"),
		UploadedBy: stmt.GetText("uploaded_by"),
		Created:    created,
	}, nil
}

func (d *Db) CreateFile(f db.File) (*db.File, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var created db.File
	err = sqlitex.Execute(conn,
		`INSERT INTO files (filename, mimetype, size, uploaded_by)
		VALUES (?, ?, ?, ?)
		RETURNING `+fileColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tmp, err := newFileFromStmt(stmt)
				if err == nil && tmp != nil {
					created = *tmp
				}
				return err
			},
			Args: []interface{}{f.Filename, f.Mimetype, f.Size, f.UploadedBy},
		})
	if err != nil {
		return nil, fmt.Errorf("file insert failed: %w", err)
	}
	return &created, nil
}

func (d *Db) GetFileById(id string) (*db.File, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var file *db.File
	err = sqlitex.Execute(conn,
		`SELECT `+fileColumns+` FROM files WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				file, err = newFileFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (d *Db) DeleteFile(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM files WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
		})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
