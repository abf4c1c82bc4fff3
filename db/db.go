package db

// Role interfaces consumed by the application. The concrete driver
// (db/zombiezen) satisfies all of them; handlers depend only on the role
// they need, mocks override per-method behavior in tests.

// DbAuth covers user records and the auth state machine transitions.
type DbAuth interface {
	// GetUserByEmail returns the user record for email, or (nil, nil) when no
	// matching record exists. An error indicates a store failure only.
	GetUserByEmail(email string) (*User, error)

	// GetUserById returns the user record for id, or (nil, nil) when absent.
	GetUserById(id string) (*User, error)

	// CreateUserWithPassword inserts a new user. On email conflict the
	// existing row is returned untouched; callers detect the conflict by
	// comparing the returned record against what they submitted.
	CreateUserWithPassword(user User) (*User, error)

	// SetVerificationCode stores a fresh email verification code, replacing
	// any previous one.
	SetVerificationCode(userID, code string) error

	// ConfirmVerification marks the user verified and clears the stored
	// verification code, but only if code equals the stored value.
	// Returns ErrCodeMismatch otherwise; a consumed code can never be reused.
	ConfirmVerification(userID, code string) error

	// SetRecoveryCode stores a fresh password recovery code.
	SetRecoveryCode(userID, code string) error

	// RecoverPassword sets hashedPassword and clears the recovery code, but
	// only if code equals the stored value. Returns ErrCodeMismatch otherwise.
	RecoverPassword(userID, code, hashedPassword string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(userID, hashedPassword string) error

	// UpdateProfile persists name, email, profile picture reference and the
	// verified flag of an existing user. Returns ErrConstraintUnique when the
	// email is taken by another user.
	UpdateProfile(user User) error
}

// DbContent covers categories and posts.
type DbContent interface {
	CreateCategory(c Category) (*Category, error)
	GetCategoryById(id string) (*Category, error)
	UpdateCategory(c Category) error
	DeleteCategory(id string) error
	// ListCategories returns a page of categories matching q (LIKE over title
	// and description, empty q matches all) plus the total match count.
	ListCategories(q string, limit, offset int) ([]*Category, int, error)

	CreatePost(p Post) (*Post, error)
	GetPostById(id string) (*Post, error)
	UpdatePost(p Post) error
	DeletePost(id string) error
	// ListPosts filters by q (LIKE over title) and optional category id.
	ListPosts(q, categoryID string, limit, offset int) ([]*Post, int, error)
}

// DbFile covers uploaded file metadata.
type DbFile interface {
	CreateFile(f File) (*File, error)
	// GetFileById returns (nil, nil) when absent.
	GetFileById(id string) (*File, error)
	DeleteFile(id string) error
}

// DbQueue covers the background job queue.
type DbQueue interface {
	// InsertJob adds a job. Returns ErrConstraintUnique when an identical
	// (job_type, payload) pair is already queued, which implements the
	// cooldown-bucket dedup.
	InsertJob(job Job) error

	// Claim marks up to limit due jobs as processing and returns them.
	Claim(limit int) ([]*Job, error)

	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error

	// MarkRecurrentCompleted completes one run of a recurrent job and inserts
	// its successor scheduled one interval later.
	MarkRecurrentCompleted(completedJobID int64, newJob Job) error
}

// DbApp combines the role interfaces the application requires from its store.
type DbApp interface {
	DbAuth
	DbContent
	DbFile
	DbQueue
}
