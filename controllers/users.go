package controllers

import (
	"net/http"

	"github.com/cockroachdb/errors"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
	"github.com/MartinPJB/BLOG-CMS/pkg/fields"
)

// Users handles signing in and out, and the public profiles.
type Users struct {
	cms.Context
	deps Deps
}

// Index has nothing to list and sends visitors to the articles.
func (u *Users) Index(_ cms.Parameters) error {
	return u.Redirect("articles")
}

// See shows the profile selected by the trailing id with the articles that
// user published.
func (u *Users) See(_ cms.Parameters) error {
	id := optID(u)
	if id == 0 {
		return u.Redirect("articles")
	}

	user, err := u.deps.Users.ByID(u, id)
	if err != nil {
		return notFoundOr(err, "user")
	}
	published, err := u.deps.Articles.AllPublished(u, nil)
	if err != nil {
		return err
	}
	articles := make([]models.Article, 0, len(published))
	for _, a := range published {
		if a.AuthorID == user.ID {
			articles = append(articles, a)
		}
	}

	return u.Render("Users/see", map[string]any{
		"user":     user,
		"articles": articles,
	})
}

func (u *Users) Login(_ cms.Parameters) error {
	if u.Auth().Authenticated() {
		return u.Redirect("articles")
	}
	return u.Render("Users/login", map[string]any{"email": ""})
}

// ProcessLogin checks the submitted credentials and starts an authenticated
// session. Failures re-render the form with status 422.
func (u *Users) ProcessLogin(p cms.Parameters) error {
	if u.Auth().Authenticated() {
		return u.Redirect("articles")
	}

	email := fields.CleanString(p.Form("email"))
	password := p.Form("password")

	if !fields.IsEmail(email) {
		u.AddMessage("The email is not valid.")
	}
	if !fields.NotEmpty(password) {
		u.AddMessage("Please enter a password.")
	}

	if fields.IsEmail(email) && fields.NotEmpty(password) {
		user, err := u.deps.Users.Authenticate(u, email, password)
		switch {
		case err == nil:
			if err := u.AuthenticateSession(user.ID); err != nil {
				return err
			}
			u.LogInfo("user signed in", "user_id", user.ID)
			if user.IsAdmin() {
				return u.Redirect("admin")
			}
			return u.Redirect("articles")
		case errors.Is(err, models.ErrInvalidCredentials):
			u.AddMessage("The email or password is incorrect.")
		default:
			return err
		}
	}

	return u.RenderStatus(http.StatusUnprocessableEntity, "Users/login", map[string]any{"email": email})
}

func (u *Users) Logout(_ cms.Parameters) error {
	if err := u.DestroySession(); err != nil {
		return err
	}
	return u.Redirect("articles")
}
