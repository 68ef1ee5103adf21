package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProductModel 投资产品模型
type ProductModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_product_created_active,priority:1,sort:desc"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	ProductTitle string `json:"product_title" gorm:"size:200;not null;index" binding:"required"`
	Description  string `json:"description" gorm:"type:text" binding:"required"`
	ArtistName   string `json:"artist_name" gorm:"size:100;not null;index" binding:"required"`
	ProducerName string `json:"producer_name" gorm:"size:100"`
	LabelName    string `json:"label_name" gorm:"size:100"`
	Category     Category `json:"category" gorm:"size:50;index:idx_product_category_status,priority:1"`
	Genre        Genre    `json:"genre" gorm:"size:50;default:'Other'"`

	// 资金信息
	TotalBudget       float64 `json:"total_budget" gorm:"not null" binding:"required"`
	CurrentFunding    float64 `json:"current_funding" gorm:"default:0"`
	MinimumInvestment float64 `json:"minimum_investment" gorm:"not null" binding:"required"`
	TotalInvestors    int64   `json:"total_investors" gorm:"default:0"`
	FundingDeadline   *time.Time    `json:"funding_deadline"`
	FundingStatus     FundingStatus `json:"funding_status" gorm:"size:20;default:'active'"`

	// 媒体资源
	CoverImage     string                      `json:"cover_image"`
	AlbumArt       string                      `json:"album_art"`
	PosterImage    string                      `json:"poster_image"`
	VideoThumbnail string                      `json:"video_thumbnail"`
	VideoFile      string                      `json:"video_file"`
	YoutubeLink    string                      `json:"youtube_link"`
	DemoTrack      string                      `json:"demo_track"`
	FullTrack      string                      `json:"full_track"`
	GalleryImages  datatypes.JSONSlice[string] `json:"gallery_images"`

	// 项目信息
	ExpectedDuration string                      `json:"expected_duration" gorm:"size:50"`
	ProductStatus    ProductStatus               `json:"product_status" gorm:"size:20;default:'funding';index:idx_product_category_status,priority:2"`
	TargetAudience   datatypes.JSONSlice[string] `json:"target_audience"`

	// 管理标记
	IsFeatured bool `json:"is_featured" gorm:"default:false;index"`
	IsActive   bool `json:"is_active" gorm:"default:true;index:idx_product_created_active,priority:2"`

	// SEO与搜索
	Slug string                      `json:"slug" gorm:"size:120;uniqueIndex"`
	Tags datatypes.JSONSlice[string] `json:"tags"`

	// 访问统计
	ViewCount  int64 `json:"view_count" gorm:"default:0"`
	ShareCount int64 `json:"share_count" gorm:"default:0"`
}

// TableName 自定义表名
func (ProductModel) TableName() string {
	return "product"
}

// Category 产品类别
type Category string

const (
	CategoryMusic       Category = "Music"
	CategoryFilm        Category = "Film"
	CategoryCommercial  Category = "Commercial"
	CategoryUpcoming    Category = "Upcoming Projects"
	CategoryDocumentary Category = "Documentary"
	CategoryWebSeries   Category = "Web Series"
	CategoryOther       Category = "Other"
)

// Categories 全部合法类别
var Categories = []Category{
	CategoryMusic, CategoryFilm, CategoryCommercial, CategoryUpcoming,
	CategoryDocumentary, CategoryWebSeries, CategoryOther,
}

// Valid 校验类别取值
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Genre 产品流派
type Genre string

const (
	GenrePop        Genre = "Pop"
	GenreRock       Genre = "Rock"
	GenreClassical  Genre = "Classical"
	GenreJazz       Genre = "Jazz"
	GenreHipHop     Genre = "Hip-Hop"
	GenreElectronic Genre = "Electronic"
	GenreFolk       Genre = "Folk"
	GenreCountry    Genre = "Country"
	GenreRnB        Genre = "R&B"
	GenreIndie      Genre = "Indie"
	GenreOther      Genre = "Other"
)

// Genres 全部合法流派
var Genres = []Genre{
	GenrePop, GenreRock, GenreClassical, GenreJazz, GenreHipHop,
	GenreElectronic, GenreFolk, GenreCountry, GenreRnB, GenreIndie, GenreOther,
}

// Valid 校验流派取值
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

// ProductStatus 产品状态
type ProductStatus string

const (
	ProductStatusFunding      ProductStatus = "funding"       // 募资中
	ProductStatusInProduction ProductStatus = "in-production" // 制作中
	ProductStatusCompleted    ProductStatus = "completed"     // 已完成
	ProductStatusCancelled    ProductStatus = "cancelled"     // 已取消
)

// Valid 校验产品状态取值
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusFunding, ProductStatusInProduction, ProductStatusCompleted, ProductStatusCancelled:
		return true
	}
	return false
}

// FundingStatus 募资状态
type FundingStatus string

const (
	FundingStatusActive    FundingStatus = "active"    // 募资进行中
	FundingStatusPaused    FundingStatus = "paused"    // 已暂停
	FundingStatusCompleted FundingStatus = "completed" // 募资结束
	FundingStatusCancelled FundingStatus = "cancelled" // 已取消
)

// Valid 校验募资状态取值
func (s FundingStatus) Valid() bool {
	switch s {
	case FundingStatusActive, FundingStatusPaused, FundingStatusCompleted, FundingStatusCancelled:
		return true
	}
	return false
}

// 资金字段约束
const (
	MinTotalBudget       = 1000
	MaxTotalBudget       = 100000000
	MinMinimumInvestment = 100
	MaxTags              = 10
	MaxGalleryImages     = 10
)
