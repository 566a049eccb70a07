package controllers

import (
	"strconv"

	"github.com/cockroachdb/errors"

	cms "github.com/MartinPJB/BLOG-CMS"
	"github.com/MartinPJB/BLOG-CMS/models"
)

// optID reads the trailing identifier as a positive id. Anything else is 0.
func optID(c cms.Context) int64 {
	id, err := strconv.ParseInt(c.RequestContext().OptParam(), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// notFoundOr turns models.ErrNotFound into a 404 and wraps anything else as a 500.
func notFoundOr(err error, what string) error {
	if errors.Is(err, models.ErrNotFound) {
		return cms.ErrNotFound(what+" not found", cms.WithError(err))
	}
	return cms.ErrInternal("", cms.WithError(errors.Wrapf(err, "load %s", what)))
}

// formErrors adds the messages explaining a failed write. Anything the visitor
// cannot fix is logged and shown as a generic message.
func formErrors(c cms.Context, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		for _, msg := range ve.Messages {
			c.AddMessage(msg)
		}
		return
	}
	switch {
	case errors.Is(err, models.ErrDuplicate):
		c.AddMessage("An entry with this name already exists.")
	case errors.Is(err, models.ErrNotFound):
		c.AddMessage("This entry no longer exists.")
	default:
		c.LogError("save failed", "error", err)
		c.AddMessage("The changes could not be saved.")
	}
}
