package zombiezen

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const categoryColumns = `id, title, descr, updated_by, created, updated`
const postColumns = `id, title, descr, file, category, updated_by, created, updated`

func newCategoryFromStmt(stmt *sqlite.Stmt) (*db.Category, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}
	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Category{
		ID:        stmt.GetText("id"),
		Title:     stmt.GetText("title"),
		Desc:      stmt.GetText("descr"),
		UpdatedBy: stmt.GetText("updated_by"),
		Created:   created,
		Updated:   updated,
	}, nil
}

func newPostFromStmt(stmt *sqlite.Stmt) (*db.Post, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}
	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Post{
		ID:        stmt.GetText("id"),
		Title:     stmt.GetText("title"),
		Desc:      stmt.GetText("descr"),
		File:      stmt.GetText("file"),
		Category:  stmt.GetText("category"),
		UpdatedBy: stmt.GetText("updated_by"),
		Created:   created,
		Updated:   updated,
	}, nil
}

func (d *Db) CreateCategory(c db.Category) (*db.Category, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var created db.Category
	err = sqlitex.Execute(conn,
		`INSERT INTO categories (title, descr, updated_by)
		VALUES (?, ?, ?)
		RETURNING `+categoryColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tmp, err := newCategoryFromStmt(stmt)
				if err == nil && tmp != nil {
					created = *tmp
				}
				return err
			},
			Args: []interface{}{c.Title, c.Desc, c.UpdatedBy},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return nil, db.ErrConstraintUnique
		}
		return nil, fmt.Errorf("category insert failed: %w", err)
	}
	return &created, nil
}

func (d *Db) GetCategoryById(id string) (*db.Category, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var category *db.Category
	err = sqlitex.Execute(conn,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				category, err = newCategoryFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (d *Db) UpdateCategory(c db.Category) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE categories
		SET title = ?,
			descr = ?,
			updated_by = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{c.Title, c.Desc, c.UpdatedBy, c.ID},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (d *Db) DeleteCategory(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM categories WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
		})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// ListCategories returns a page of categories matching q plus the total match
// count. An empty q matches everything.
func (d *Db) ListCategories(q string, limit, offset int) ([]*db.Category, int, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, 0, err
	}
	defer d.pool.Put(conn)

	pattern := likePattern(q)

	var total int
	err = sqlitex.Execute(conn,
		`SELECT COUNT(*) AS total FROM categories WHERE title LIKE ? ESCAPE '\' OR descr LIKE ? ESCAPE '\'`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = int(stmt.GetInt64("total"))
				return nil
			},
			Args: []interface{}{pattern, pattern},
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []*db.Category
	err = sqlitex.Execute(conn,
		`SELECT `+categoryColumns+` FROM categories
		WHERE title LIKE ? ESCAPE '\' OR descr LIKE ? ESCAPE '\'
		ORDER BY updated DESC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				c, err := newCategoryFromStmt(stmt)
				if err != nil {
					return err
				}
				categories = append(categories, c)
				return nil
			},
			Args: []interface{}{pattern, pattern, limit, offset},
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	if categories == nil {
		categories = []*db.Category{}
	}
	return categories, total, nil
}

func (d *Db) CreatePost(p db.Post) (*db.Post, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var created db.Post
	err = sqlitex.Execute(conn,
		`INSERT INTO posts (title, descr, file, category, updated_by)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+postColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tmp, err := newPostFromStmt(stmt)
				if err == nil && tmp != nil {
					created = *tmp
				}
				return err
			},
			Args: []interface{}{p.Title, p.Desc, p.File, p.Category, p.UpdatedBy},
		})
	if err != nil {
		return nil, fmt.Errorf("post insert failed: %w", err)
	}
	return &created, nil
}

func (d *Db) GetPostById(id string) (*db.Post, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var post *db.Post
	err = sqlitex.Execute(conn,
		`SELECT `+postColumns+` FROM posts WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				post, err = newPostFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (d *Db) UpdatePost(p db.Post) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE posts
		SET title = ?,
			descr = ?,
			file = ?,
			category = ?,
			updated_by = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{p.Title, p.Desc, p.File, p.Category, p.UpdatedBy, p.ID},
		})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

func (d *Db) DeletePost(id string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM posts WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{id},
		})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// ListPosts filters by q (title search) and optional category id.
func (d *Db) ListPosts(q, categoryID string, limit, offset int) ([]*db.Post, int, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, 0, err
	}
	defer d.pool.Put(conn)

	pattern := likePattern(q)
	where := `title LIKE ? ESCAPE '\'`
	args := []interface{}{pattern}
	if categoryID != "" {
		where += ` AND category = ?`
		args = append(args, categoryID)
	}

	var total int
	err = sqlitex.Execute(conn,
		`SELECT COUNT(*) AS total FROM posts WHERE `+where,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = int(stmt.GetInt64("total"))
				return nil
			},
			Args: args,
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []*db.Post
	err = sqlitex.Execute(conn,
		`SELECT `+postColumns+` FROM posts
		WHERE `+where+`
		ORDER BY updated DESC
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				p, err := newPostFromStmt(stmt)
				if err != nil {
					return err
				}
				posts = append(posts, p)
				return nil
			},
			Args: append(append([]interface{}{}, args...), limit, offset),
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	if posts == nil {
		posts = []*db.Post{}
	}
	return posts, total, nil
}

// likePattern builds a contains-match LIKE pattern, escaping user input.
func likePattern(q string) string {
	if q == "" {
		return "%"
	}
	escaped := ""
	for _, r := range q {
		switch r {
		case '%', '_', '\\':
			escaped += `\` + string(r)
		default:
			escaped += string(r)
		}
	}
	return "%" + escaped + "%"
}
