// Package controllers holds the blog's controllers and its route table.
//
// Each controller embeds the request [cms.Context] and is built per request by
// the router, after the route, method and access checks pass. Stores are
// injected through [Deps]:
//
//	router := cms.NewRouter(log)
//	controllers.Register(router, controllers.Deps{
//		Articles:   models.NewArticles(db),
//		Categories: models.NewCategories(db),
//		Blocks:     models.NewBlocks(db),
//		Users:      models.NewUsers(db),
//	})
package controllers
