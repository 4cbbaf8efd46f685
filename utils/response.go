package utils

import (
	"github.com/kataras/iris/v12"
)

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// JSONData writes the success envelope. message may be empty.
func JSONData(ctx iris.Context, status int, message string, data interface{}) {
	body := iris.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	ctx.StatusCode(status)
	ctx.JSON(body)
}

func CreateError(status int, message string, ctx iris.Context) {
	ctx.StopWithJSON(status, iris.Map{"success": false, "message": message})
}

func CreateNotFound(ctx iris.Context, message string) {
	CreateError(iris.StatusNotFound, message, ctx)
}

func CreateUnauthorized(ctx iris.Context, message string) {
	CreateError(iris.StatusUnauthorized, message, ctx)
}

func CreateInternalServerError(ctx iris.Context, message string) {
	CreateError(iris.StatusInternalServerError, message, ctx)
}
