package mock

import (
	"github.com/quillhq/quill/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	CreateUserWithPasswordFunc func(user db.User) (*db.User, error)
	SetVerificationCodeFunc    func(userID, code string) error
	ConfirmVerificationFunc    func(userID, code string) error
	SetRecoveryCodeFunc        func(userID, code string) error
	RecoverPasswordFunc        func(userID, code, hashedPassword string) error
	UpdatePasswordFunc         func(userID, hashedPassword string) error
	UpdateProfileFunc          func(user db.User) error

	// --- Mock DbContent Methods ---
	CreateCategoryFunc     func(c db.Category) (*db.Category, error)
	GetCategoryByIdFunc    func(id string) (*db.Category, error)
	UpdateCategoryFunc     func(c db.Category) error
	DeleteCategoryFunc     func(id string) error
	ListCategoriesFunc     func(q string, limit, offset int) ([]*db.Category, int, error)
	CreatePostFunc         func(p db.Post) (*db.Post, error)
	GetPostByIdFunc        func(id string) (*db.Post, error)
	UpdatePostFunc         func(p db.Post) error
	DeletePostFunc         func(id string) error
	ListPostsFunc          func(q, categoryID string, limit, offset int) ([]*db.Post, int, error)

	// --- Mock DbFile Methods ---
	CreateFileFunc  func(f db.File) (*db.File, error)
	GetFileByIdFunc func(id string) (*db.File, error)
	DeleteFileFunc  func(id string) error

	// --- Mock DbQueue Methods ---
	InsertJobFunc              func(job db.Job) error
	ClaimFunc                  func(limit int) ([]*db.Job, error)
	MarkCompletedFunc          func(jobID int64) error
	MarkFailedFunc             func(jobID int64, errMsg string) error
	MarkRecurrentCompletedFunc func(completedJobID int64, newJob db.Job) error
}

// --- Implement DbAuth ---

func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}

func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}

func (m *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	if m.CreateUserWithPasswordFunc != nil {
		return m.CreateUserWithPasswordFunc(user)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-user-id"
	return &user, nil
}

func (m *Db) SetVerificationCode(userID, code string) error {
	if m.SetVerificationCodeFunc != nil {
		return m.SetVerificationCodeFunc(userID, code)
	}
	return nil
}

func (m *Db) ConfirmVerification(userID, code string) error {
	if m.ConfirmVerificationFunc != nil {
		return m.ConfirmVerificationFunc(userID, code)
	}
	return nil
}

func (m *Db) SetRecoveryCode(userID, code string) error {
	if m.SetRecoveryCodeFunc != nil {
		return m.SetRecoveryCodeFunc(userID, code)
	}
	return nil
}

func (m *Db) RecoverPassword(userID, code, hashedPassword string) error {
	if m.RecoverPasswordFunc != nil {
		return m.RecoverPasswordFunc(userID, code, hashedPassword)
	}
	return nil
}

func (m *Db) UpdatePassword(userID, hashedPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userID, hashedPassword)
	}
	return nil
}

func (m *Db) UpdateProfile(user db.User) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(user)
	}
	return nil
}

// --- Implement DbContent ---

func (m *Db) CreateCategory(c db.Category) (*db.Category, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(c)
	}
	c.ID = "mock-category-id"
	return &c, nil
}

func (m *Db) GetCategoryById(id string) (*db.Category, error) {
	if m.GetCategoryByIdFunc != nil {
		return m.GetCategoryByIdFunc(id)
	}
	return nil, nil
}

func (m *Db) UpdateCategory(c db.Category) error {
	if m.UpdateCategoryFunc != nil {
		return m.UpdateCategoryFunc(c)
	}
	return nil
}

func (m *Db) DeleteCategory(id string) error {
	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(id)
	}
	return nil
}

func (m *Db) ListCategories(q string, limit, offset int) ([]*db.Category, int, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(q, limit, offset)
	}
	return []*db.Category{}, 0, nil
}

func (m *Db) CreatePost(p db.Post) (*db.Post, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(p)
	}
	p.ID = "mock-post-id"
	return &p, nil
}

func (m *Db) GetPostById(id string) (*db.Post, error) {
	if m.GetPostByIdFunc != nil {
		return m.GetPostByIdFunc(id)
	}
	return nil, nil
}

func (m *Db) UpdatePost(p db.Post) error {
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(p)
	}
	return nil
}

func (m *Db) DeletePost(id string) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(id)
	}
	return nil
}

func (m *Db) ListPosts(q, categoryID string, limit, offset int) ([]*db.Post, int, error) {
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(q, categoryID, limit, offset)
	}
	return []*db.Post{}, 0, nil
}

// --- Implement DbFile ---

func (m *Db) CreateFile(f db.File) (*db.File, error) {
	if m.CreateFileFunc != nil {
		return m.CreateFileFunc(f)
	}
	f.ID = "mock-file-id"
	return &f, nil
}

func (m *Db) GetFileById(id string) (*db.File, error) {
	if m.GetFileByIdFunc != nil {
		return m.GetFileByIdFunc(id)
	}
	return nil, nil
}

func (m *Db) DeleteFile(id string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(id)
	}
	return nil
}

// --- Implement DbQueue ---

func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil
}

func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil
}

func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil
}

func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil
}

func (m *Db) MarkRecurrentCompleted(completedJobID int64, newJob db.Job) error {
	if m.MarkRecurrentCompletedFunc != nil {
		return m.MarkRecurrentCompletedFunc(completedJobID, newJob)
	}
	return nil
}
