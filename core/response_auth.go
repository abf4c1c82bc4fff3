package core

import (
	"net/http"
	"time"

	"github.com/quillhq/quill/db"
)

// Response shapes for authentication endpoints. Successful signin returns:
//
//	{
//	  "code": 200,
//	  "status": true,
//	  "message": "Authentication successful",
//	  "data": {
//	    "token": "eyJhbGciOiJIUzI...",
//	    "token_type": "Bearer",
//	    "expires_in": 2700,
//	    "user": {"id": "...", "email": "...", ...}
//	  }
//	}

// UserRecord is the client-visible projection of a user. Password hash and
// pending codes never appear here.
type UserRecord struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	Verified   bool        `json:"verified"`
	ProfilePic *FileRecord `json:"profile_pic,omitempty"`
	Created    time.Time   `json:"created"`
	Updated    time.Time   `json:"updated"`
}

// FileRecord is the client-visible projection of an uploaded file.
type FileRecord struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// NewUserRecord builds the projection without resolving the profile picture.
func NewUserRecord(user *db.User) UserRecord {
	return UserRecord{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Verified: user.Verified,
		Created:  user.Created,
		Updated:  user.Updated,
	}
}

func newFileRecord(f *db.File) *FileRecord {
	if f == nil {
		return nil
	}
	return &FileRecord{
		ID:       f.ID,
		Filename: f.Filename,
		Mimetype: f.Mimetype,
		Size:     f.Size,
	}
}

// AuthData is the payload of a successful authentication.
type AuthData struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int        `json:"expires_in"`
	User      UserRecord `json:"user"`
}

// writeAuthResponse writes the standardized authentication success envelope.
func writeAuthResponse(w http.ResponseWriter, token string, expiresIn int, user *db.User) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "Authentication successful",
		},
		Data: AuthData{
			Token:     token,
			TokenType: "Bearer",
			ExpiresIn: expiresIn,
			User:      NewUserRecord(user),
		},
	})
}
