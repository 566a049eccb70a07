// Package models holds the per-entity stores of the CMS: categories,
// articles, users and site settings.
//
// Every store wraps a *database.Manager and speaks to it only through
// Read, ReadWithJoin, Create, Update and Delete. Inputs are validated with
// go-playground/validator; failures come back as *ValidationError with one
// message per field. Unique violations come back as ErrDuplicate.
//
//	articles := models.NewArticles(db)
//	list, err := articles.AllPublished(ctx, nil)
//
// Operations that issue more than one statement run in a transaction.
package models
