package controllers

import (
	"net/http"

	cms "github.com/MartinPJB/BLOG-CMS"
)

// Register adds every blog route to r.
func Register(r *cms.Router, d Deps) {
	articles := func(c cms.Context) *Articles { return &Articles{Context: c, deps: d} }
	r.AddRoute("articles", "", cms.Bind(articles, (*Articles).Index))
	r.AddRoute("articles", "index", cms.Bind(articles, (*Articles).Index))
	r.AddRoute("articles", "list", cms.Bind(articles, (*Articles).Index))
	r.AddRoute("articles", "see", cms.Bind(articles, (*Articles).See))

	categories := func(c cms.Context) *Categories { return &Categories{Context: c, deps: d} }
	r.AddRoute("categories", "", cms.Bind(categories, (*Categories).Index))
	r.AddRoute("categories", "index", cms.Bind(categories, (*Categories).Index))
	r.AddRoute("categories", "all", cms.Bind(categories, (*Categories).Index))
	r.AddRoute("categories", "see", cms.Bind(categories, (*Categories).See))

	users := func(c cms.Context) *Users { return &Users{Context: c, deps: d} }
	r.AddRoute("users", "", cms.Bind(users, (*Users).Index))
	r.AddRoute("users", "index", cms.Bind(users, (*Users).Index))
	r.AddRoute("users", "see", cms.Bind(users, (*Users).See))
	r.AddRoute("users", "login", cms.Bind(users, (*Users).Login))
	r.AddRoute("users", "process_login", cms.Bind(users, (*Users).ProcessLogin),
		cms.WithMethod(http.MethodPost))
	r.AddRoute("users", "logout", cms.Bind(users, (*Users).Logout),
		cms.WithAccessLevel(cms.Authenticated))

	admin := func(c cms.Context) *Admin { return &Admin{Context: c, deps: d} }
	adminOnly := cms.WithAccessLevel(cms.Admin)
	post := cms.WithMethod(http.MethodPost)
	r.AddRoute("admin", "", cms.Bind(admin, (*Admin).Index), adminOnly)
	r.AddRoute("admin", "index", cms.Bind(admin, (*Admin).Index), adminOnly)
	r.AddRoute("admin", "articles", cms.Bind(admin, (*Admin).Articles), adminOnly)
	r.AddRoute("admin", "categories", cms.Bind(admin, (*Admin).Categories), adminOnly)
	r.AddRoute("admin", "blocks", cms.Bind(admin, (*Admin).Blocks), adminOnly)
	r.AddRoute("admin", "articles_save", cms.Bind(admin, (*Admin).SaveArticle), adminOnly, post)
	r.AddRoute("admin", "categories_save", cms.Bind(admin, (*Admin).SaveCategory), adminOnly, post)
	r.AddRoute("admin", "articles_delete", cms.Bind(admin, (*Admin).DeleteArticle), adminOnly, post)
	r.AddRoute("admin", "categories_delete", cms.Bind(admin, (*Admin).DeleteCategory), adminOnly, post)
	r.AddRoute("admin", "create_block", cms.Bind(admin, (*Admin).CreateBlock), adminOnly, post)
	r.AddRoute("admin", "edit_block", cms.Bind(admin, (*Admin).EditBlock), adminOnly, post)
	r.AddRoute("admin", "delete_block", cms.Bind(admin, (*Admin).DeleteBlock), adminOnly, post)
}
