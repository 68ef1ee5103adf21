package logic

import (
	"strings"

	"gorm.io/gorm"
)

const defaultPageSize = 12

// Pagination 分页元数据
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
	Limit       int   `json:"limit"`
}

// NewPagination 计算分页元数据。page和limit已由Normalize保证合法，
// totalPages不会出现除零。
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     int64(page)*int64(limit) < total,
		HasPrev:     page > 1,
		Limit:       limit,
	}
}

// ProductFilter 产品列表/搜索的过滤参数
type ProductFilter struct {
	Category  string
	Status    string // productStatus
	Featured  *bool
	Active    *bool // 默认只查激活产品
	Search    string
	MinBudget float64
	MaxBudget float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Normalize 填充默认值并修正非法参数
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Active == nil {
		active := true
		f.Active = &active
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// sortColumns 允许排序的字段映射，防止任意列名注入
var sortColumns = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"productTitle":   "product_title",
	"totalBudget":    "total_budget",
	"currentFunding": "current_funding",
	"viewCount":      "view_count",
}

// Apply 将过滤条件转换为查询。搜索词对标题、艺人、标签、描述做
// 不区分大小写的匹配，其余条件以AND叠加。
func (f *ProductFilter) Apply(db *gorm.DB) *gorm.DB {
	query := db.Where("is_active = ?", *f.Active)

	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		query = query.Where("product_status = ?", f.Status)
	}
	if f.Featured != nil {
		query = query.Where("is_featured = ?", *f.Featured)
	}
	if f.MinBudget > 0 {
		query = query.Where("total_budget >= ?", f.MinBudget)
	}
	if f.MaxBudget > 0 {
		query = query.Where("total_budget <= ?", f.MaxBudget)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(product_title) LIKE ? OR LOWER(artist_name) LIKE ? OR LOWER(CAST(tags AS TEXT)) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	return query
}

// Order 应用排序。sortBy=relevance时按字段权重打分排序：
// 标题8、艺人4、标签2、描述1，同分时按id保证结果稳定。
func (f *ProductFilter) Order(query *gorm.DB) *gorm.DB {
	if f.SortBy == "relevance" && f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Select(
			"product.*, (CASE WHEN LOWER(product_title) LIKE ? THEN 8 ELSE 0 END"+
				" + CASE WHEN LOWER(artist_name) LIKE ? THEN 4 ELSE 0 END"+
				" + CASE WHEN LOWER(CAST(tags AS TEXT)) LIKE ? THEN 2 ELSE 0 END"+
				" + CASE WHEN LOWER(description) LIKE ? THEN 1 ELSE 0 END) AS relevance",
			pattern, pattern, pattern, pattern)
		return query.Order("relevance DESC, id ASC")
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}
	return query.Order(column + " " + direction + ", id ASC")
}

// Paginate 应用分页。超出末页的请求返回空列表，不算错误。
func (f *ProductFilter) Paginate(query *gorm.DB) *gorm.DB {
	offset := (f.Page - 1) * f.Limit
	return query.Offset(offset).Limit(f.Limit)
}
