package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) parsePagination(page *uint, limit *uint) (bool, int, int) {
	if page != nil && *page == 0 && limit != nil && *limit == 0 {
		// 特殊参数：展示全部
		return true, -1, -1
	}
	// 映射前：第几页，每页限制多少个
	// 映射后：页减一，限制不变
	var parsedPage, parsedLimit uint

	if page == nil || *page < 1 {
		parsedPage = 0
	} else {
		parsedPage = *page - 1
	}

	if limit == nil || *limit <= 0 {
		parsedLimit = 100
	} else {
		parsedLimit = *limit
	}

	return false, int(parsedPage), int(parsedLimit)
}

func (a *App) calcMaxPage(count int64, showAll bool, limit int) int64 {
	if showAll {
		return 1
	} else {
		pageMax := count / int64(limit)
		if (count % int64(limit)) != 0 {
			pageMax++
		}
		return pageMax
	}
}

// paginationParams 从查询参数解出 page 和 limit ，无法解析的值当作未提供
func (a *App) paginationParams(c echo.Context) (*uint, *uint) {
	var page, limit *uint

	if pageStr := c.QueryParam("page"); pageStr != "" {
		if v, err := strconv.ParseUint(pageStr, 10, 64); err == nil {
			p := uint(v)
			page = &p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if v, err := strconv.ParseUint(limitStr, 10, 64); err == nil {
			l := uint(v)
			limit = &l
		}
	}

	return page, limit
}
