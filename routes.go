package quill

import (
	"net/http"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/core"
	r "github.com/quillhq/quill/router"
)

// route registers every configured endpoint on the App's router. Handlers
// that act on behalf of a user go through the RequireAuth middleware; reads
// of published content and the auth bootstrap endpoints stay public.
func route(cfg *config.Config, ap *core.App) {
	public := func(endpoint string, h http.HandlerFunc) {
		ap.Router().Handle(endpoint, h)
	}
	protected := func(endpoint string, h http.HandlerFunc) {
		ap.Router().Handle(endpoint, r.NewChain(h).WithMiddleware(ap.RequireAuth).Handler())
	}

	// auth
	public(cfg.Endpoints.Signup, ap.SignupHandler)
	public(cfg.Endpoints.Signin, ap.SigninHandler)
	public(cfg.Endpoints.RequestEmailVerification, ap.RequestVerificationCodeHandler)
	public(cfg.Endpoints.ConfirmEmailVerification, ap.ConfirmVerificationHandler)
	public(cfg.Endpoints.RequestPasswordRecovery, ap.RequestRecoveryCodeHandler)
	public(cfg.Endpoints.ConfirmPasswordRecovery, ap.RecoverPasswordHandler)
	protected(cfg.Endpoints.ChangePassword, ap.ChangePasswordHandler)
	protected(cfg.Endpoints.UpdateProfile, ap.UpdateProfileHandler)
	protected(cfg.Endpoints.Me, ap.MeHandler)

	// categories
	protected(cfg.Endpoints.CreateCategory, ap.CreateCategoryHandler)
	protected(cfg.Endpoints.UpdateCategory, ap.UpdateCategoryHandler)
	protected(cfg.Endpoints.DeleteCategory, ap.DeleteCategoryHandler)
	public(cfg.Endpoints.GetCategory, ap.GetCategoryHandler)
	public(cfg.Endpoints.ListCategories, ap.ListCategoriesHandler)

	// posts
	protected(cfg.Endpoints.CreatePost, ap.CreatePostHandler)
	protected(cfg.Endpoints.UpdatePost, ap.UpdatePostHandler)
	protected(cfg.Endpoints.DeletePost, ap.DeletePostHandler)
	public(cfg.Endpoints.GetPost, ap.GetPostHandler)
	public(cfg.Endpoints.ListPosts, ap.ListPostsHandler)

	// files
	protected(cfg.Endpoints.UploadFile, ap.UploadFileHandler)
	public(cfg.Endpoints.GetFile, ap.GetFileHandler)
	protected(cfg.Endpoints.DeleteFile, ap.DeleteFileHandler)
}
