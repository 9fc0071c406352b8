package pagination

import (
	"errors"
	"reflect"
	"strconv"

	"governance/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the page window of a list request
type Params struct {
	Page   int `form:"-"`
	Limit  int `form:"-"`
	Offset int `form:"-"`
}

// Parse reads page/limit from the query. Missing or malformed values fall
// back to the defaults and limit is capped at MaxLimit.
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Query is a list request over compliance items, approvals or the audit
// trail: the page window plus the filters those lists accept. Filters a list
// does not support are simply ignored by its handler.
type Query struct {
	Params

	PolicyID       string `form:"policy_id" binding:"omitempty,uuid"`
	Identifier     string `form:"identifier" binding:"max=255"`
	Status         string `form:"status" binding:"omitempty,oneof='Under Review' Approved Rejected"`
	ActiveInactive string `form:"active_inactive" binding:"omitempty,oneof=Active Inactive"`
	Pending        bool   `form:"pending"`
	EntityID       string `form:"entity_id" binding:"max=64"`
}

// ParseQuery binds the filters and the page window. A malformed filter is a
// validation error keyed by its query parameter; page/limit never fail.
func ParseQuery(c *gin.Context) (Query, error) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		return Query{}, queryError(err)
	}
	q.Params = Parse(c)
	return q, nil
}

// PolicyUUID returns the policy filter, nil when absent.
func (q Query) PolicyUUID() *uuid.UUID {
	if q.PolicyID == "" {
		return nil
	}
	id, err := uuid.Parse(q.PolicyID)
	if err != nil {
		return nil
	}
	return &id
}

func queryError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// strconv failures from typed fields such as pending=maybe
		return apperror.Validation(map[string]string{"pending": "must be true or false"})
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[queryName(fe.StructField())] = filterMessage(fe)
	}
	return apperror.Validation(fields)
}

func queryName(structField string) string {
	if f, ok := reflect.TypeOf(Query{}).FieldByName(structField); ok {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
	}
	return structField
}

func filterMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag() + " check"
}
