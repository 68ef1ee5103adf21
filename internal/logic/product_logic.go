package logic

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/logger"
	"github.com/blues/ivp/internal/model"
	"github.com/blues/ivp/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var youtubePattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/.+`)

// ProductLogic 投资产品业务逻辑
type ProductLogic struct {
	db       *gorm.DB
	cache    cache.ResultCache
	uploader storage.Uploader
	stats    *StatsLogic
	cacheCfg config.CacheConfig
	poolSize int
}

// NewProductLogic 创建产品业务逻辑
func NewProductLogic(db *gorm.DB, rc cache.ResultCache, uploader storage.Uploader, cfg *config.Config) *ProductLogic {
	return &ProductLogic{
		db:       db,
		cache:    rc,
		uploader: uploader,
		stats:    NewStatsLogic(db),
		cacheCfg: cfg.Cache,
		poolSize: cfg.Storage.PoolSize,
	}
}

// CreateProductInput 创建产品的输入参数
type CreateProductInput struct {
	ProductTitle      string
	Description       string
	ArtistName        string
	ProducerName      string
	LabelName         string
	Category          model.Category
	Genre             model.Genre
	TotalBudget       float64
	MinimumInvestment float64
	ExpectedDuration  string
	ProductStatus     model.ProductStatus
	FundingDeadline   *time.Time
	TargetAudience    []string
	Tags              []string
	IsFeatured        bool
	IsActive          *bool
	YoutubeLink       string
	Media             *storage.MediaSet
}

// CreateProduct 创建产品。执行顺序固定：校验、重名检查、媒体上传、
// 事务内落库。任何一步失败都不会留下部分写入的产品记录。
func (p *ProductLogic) CreateProduct(ctx context.Context, input *CreateProductInput) (*model.ProductModel, error) {
	if err := p.validateCreate(input); err != nil {
		return nil, err
	}

	// 激活产品中不允许重名
	var count int64
	err := p.db.Model(&model.ProductModel{}).
		Where("product_title = ? AND is_active = ?", input.ProductTitle, true).
		Count(&count).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if count > 0 {
		return nil, &DuplicateError{Message: "已存在同名产品"}
	}

	// 媒体上传，全部成功才继续
	urls := &storage.MediaURLs{}
	if !input.Media.Empty() {
		if p.uploader == nil {
			return nil, &UploadError{Cause: errors.New("存储服务未配置")}
		}
		urls, err = storage.UploadAll(ctx, p.uploader, input.Media, p.poolSize)
		if err != nil {
			return nil, &UploadError{Cause: err}
		}
	}

	slug, err := GenerateSlug(p.db, input.ProductTitle, 0)
	if err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = model.CategoryOther
	}
	genre := input.Genre
	if genre == "" {
		genre = model.GenreOther
	}
	status := input.ProductStatus
	if status == "" {
		status = model.ProductStatusFunding
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &model.ProductModel{
		ProductTitle:      input.ProductTitle,
		Description:       input.Description,
		ArtistName:        input.ArtistName,
		ProducerName:      input.ProducerName,
		LabelName:         input.LabelName,
		Category:          category,
		Genre:             genre,
		TotalBudget:       input.TotalBudget,
		MinimumInvestment: input.MinimumInvestment,
		FundingDeadline:   input.FundingDeadline,
		FundingStatus:     model.FundingStatusActive,
		CoverImage:        urls.CoverImage,
		AlbumArt:          urls.AlbumArt,
		PosterImage:       urls.PosterImage,
		VideoThumbnail:    urls.VideoThumbnail,
		VideoFile:         urls.VideoFile,
		YoutubeLink:       input.YoutubeLink,
		DemoTrack:         urls.DemoTrack,
		FullTrack:         urls.FullTrack,
		GalleryImages:     datatypes.NewJSONSlice(urls.GalleryImages),
		ExpectedDuration:  input.ExpectedDuration,
		ProductStatus:     status,
		TargetAudience:    datatypes.NewJSONSlice(input.TargetAudience),
		IsFeatured:        input.IsFeatured,
		IsActive:          isActive,
		Slug:              slug,
		Tags:              datatypes.NewJSONSlice(firstN(input.Tags, model.MaxTags)),
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &DuplicateError{Message: "产品标题或slug已存在"}
		}
		return nil, storeErr(err)
	}

	p.cache.InvalidateAll()

	return product, nil
}

// validateCreate 校验创建参数，收集所有字段级错误一次返回
func (p *ProductLogic) validateCreate(input *CreateProductInput) error {
	var messages []string

	if input.ProductTitle == "" {
		messages = append(messages, "产品标题不能为空")
	} else if len(input.ProductTitle) > 200 {
		messages = append(messages, "产品标题不能超过200个字符")
	}
	if input.Description == "" {
		messages = append(messages, "产品描述不能为空")
	} else if len(input.Description) > 2000 {
		messages = append(messages, "产品描述不能超过2000个字符")
	}
	if input.ArtistName == "" {
		messages = append(messages, "艺人名称不能为空")
	} else if len(input.ArtistName) > 100 {
		messages = append(messages, "艺人名称不能超过100个字符")
	}
	if input.TotalBudget < model.MinTotalBudget {
		messages = append(messages, fmt.Sprintf("目标预算不能低于%d", model.MinTotalBudget))
	}
	if input.TotalBudget > model.MaxTotalBudget {
		messages = append(messages, fmt.Sprintf("目标预算不能超过%d", model.MaxTotalBudget))
	}
	if input.MinimumInvestment < model.MinMinimumInvestment {
		messages = append(messages, fmt.Sprintf("最低投资额不能低于%d", model.MinMinimumInvestment))
	}
	if input.MinimumInvestment > input.TotalBudget {
		messages = append(messages, "最低投资额不能超过目标预算")
	}
	if input.Category != "" && !input.Category.Valid() {
		messages = append(messages, "无效的产品类别")
	}
	if input.Genre != "" && !input.Genre.Valid() {
		messages = append(messages, "无效的产品流派")
	}
	if input.ProductStatus != "" && !input.ProductStatus.Valid() {
		messages = append(messages, "无效的产品状态")
	}
	if input.FundingDeadline != nil && !input.FundingDeadline.After(time.Now()) {
		messages = append(messages, "募资截止时间必须晚于当前时间")
	}
	if input.YoutubeLink != "" && !youtubePattern.MatchString(input.YoutubeLink) {
		messages = append(messages, "无效的YouTube链接")
	}
	if input.Media != nil && len(input.Media.GalleryImages) > model.MaxGalleryImages {
		messages = append(messages, fmt.Sprintf("相册图片不能超过%d张", model.MaxGalleryImages))
	}

	if len(messages) > 0 {
		return NewValidationError(messages...)
	}
	return nil
}

// ProductListItem 列表视图的产品条目，描述和媒体字段做了裁剪
type ProductListItem struct {
	Id                int64              `json:"id"`
	ProductTitle      string             `json:"productTitle"`
	ArtistName        string             `json:"artistName"`
	Category          model.Category     `json:"category"`
	Genre             model.Genre        `json:"genre"`
	Description       string             `json:"description"`
	TotalBudget       float64            `json:"totalBudget"`
	CurrentFunding    float64            `json:"currentFunding"`
	MinimumInvestment float64            `json:"minimumInvestment"`
	FundingDeadline   *time.Time         `json:"fundingDeadline"`
	ProductStatus     model.ProductStatus `json:"productStatus"`
	FundingStatus     model.FundingStatus `json:"fundingStatus"`
	IsFeatured        bool               `json:"isFeatured"`
	IsActive          bool               `json:"isActive"`
	Slug              string             `json:"slug"`
	YoutubeLink       string             `json:"youtubeLink"`
	Tags              []string           `json:"tags"`
	GalleryImages     []string           `json:"galleryImages"`
	TargetAudience    []string           `json:"targetAudience"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	TotalInvestors    int64              `json:"totalInvestors"`
	ActualFunding     float64            `json:"actualFunding"`
	FundingPercentage float64            `json:"fundingPercentage"`
}

// ProductListResult 产品列表查询结果
type ProductListResult struct {
	Products   []ProductListItem `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

// GetProducts 查询产品列表，带缓存和批量募资统计
func (p *ProductLogic) GetProducts(filter *ProductFilter) (*ProductListResult, error) {
	filter.Normalize()
	return p.listProducts(filter, "products", p.listTTL())
}

// SearchProducts 全文搜索产品，搜索词至少2个字符，默认按相关度排序
func (p *ProductLogic) SearchProducts(filter *ProductFilter) (*ProductListResult, error) {
	if len(filter.Search) < 2 {
		return nil, NewValidationError("搜索词至少需要2个字符")
	}
	filter.Normalize()
	if filter.SortBy == "createdAt" {
		filter.SortBy = "relevance"
	}
	return p.listProducts(filter, "search", p.searchTTL())
}

// listProducts 列表/搜索的公共实现：缓存、过滤、分页、批量统计
func (p *ProductLogic) listProducts(filter *ProductFilter, op string, ttl time.Duration) (*ProductListResult, error) {
	key := cache.Key(op, filter.Category, filter.Status, boolParam(filter.Featured),
		boolParam(filter.Active), filter.Page, filter.Limit, filter.SortBy,
		filter.SortOrder, filter.Search, filter.MinBudget, filter.MaxBudget)

	if cached, ok := p.cache.Get(key); ok {
		if result, ok := cached.(*ProductListResult); ok {
			return result, nil
		}
	}

	var total int64
	if err := filter.Apply(p.db.Model(&model.ProductModel{})).Count(&total).Error; err != nil {
		return nil, storeErr(err)
	}

	var products []model.ProductModel
	query := filter.Apply(p.db.Model(&model.ProductModel{}))
	query = filter.Order(query)
	query = filter.Paginate(query)
	if err := query.Find(&products).Error; err != nil {
		return nil, storeErr(err)
	}

	ids := make([]int64, len(products))
	for i, product := range products {
		ids[i] = product.Id
	}

	// 一次分组查询拿到全部产品的募资统计，避免N+1
	listStats, err := p.stats.ComputeListStats(ids)
	if err != nil {
		return nil, err
	}

	items := make([]ProductListItem, len(products))
	for i, product := range products {
		stats := listStats[product.Id]
		items[i] = ProductListItem{
			Id:                product.Id,
			ProductTitle:      product.ProductTitle,
			ArtistName:        product.ArtistName,
			Category:          product.Category,
			Genre:             product.Genre,
			Description:       truncate(product.Description, 200),
			TotalBudget:       product.TotalBudget,
			CurrentFunding:    product.CurrentFunding,
			MinimumInvestment: product.MinimumInvestment,
			FundingDeadline:   product.FundingDeadline,
			ProductStatus:     product.ProductStatus,
			FundingStatus:     product.FundingStatus,
			IsFeatured:        product.IsFeatured,
			IsActive:          product.IsActive,
			Slug:              product.Slug,
			YoutubeLink:       product.YoutubeLink,
			Tags:              product.Tags,
			GalleryImages:     firstN(product.GalleryImages, 3),
			TargetAudience:    firstN(product.TargetAudience, 5),
			CreatedAt:         product.CreatedAt,
			UpdatedAt:         product.UpdatedAt,
			TotalInvestors:    stats.TotalInvestors,
			ActualFunding:     stats.ActualFunding,
			FundingPercentage: stats.FundingPercentage,
		}
	}

	result := &ProductListResult{
		Products:   items,
		Pagination: NewPagination(filter.Page, filter.Limit, total),
	}

	p.cache.Set(key, result, ttl)

	return result, nil
}

// ProductDetail 产品详情，含实时聚合的募资统计和派生字段
type ProductDetail struct {
	Product           *model.ProductModel `json:"product"`
	Stats             *ProductStats       `json:"stats"`
	FundingPercentage float64             `json:"fundingPercentage"`
	RemainingAmount   float64             `json:"remainingAmount"`
	FundingStatusText string              `json:"fundingStatusText"`
	TimeRemaining     string              `json:"timeRemaining"`
}

// GetProduct 获取产品详情。募资统计从认购记录实时聚合，
// 浏览计数异步自增，不阻塞读取。
func (p *ProductLogic) GetProduct(id int64) (*ProductDetail, error) {
	key := cache.Key("product", id)
	if cached, ok := p.cache.Get(key); ok {
		if detail, ok := cached.(*ProductDetail); ok {
			return detail, nil
		}
	}

	var product model.ProductModel
	if err := p.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "产品不存在"}
		}
		return nil, storeErr(err)
	}
	if !product.IsActive {
		return nil, &NotFoundError{Message: "产品不存在"}
	}

	stats, err := p.stats.ComputeProductStats(id)
	if err != nil {
		return nil, err
	}

	pct := model.FundingPercentage(stats.TotalAmount, product.TotalBudget)
	detail := &ProductDetail{
		Product:           &product,
		Stats:             stats,
		FundingPercentage: pct,
		RemainingAmount:   model.RemainingAmount(stats.TotalAmount, product.TotalBudget),
		FundingStatusText: model.FundingStatusText(pct),
		TimeRemaining:     model.TimeRemaining(product.FundingDeadline, time.Now()),
	}

	// 浏览计数异步自增
	go func() {
		if err := p.db.Model(&model.ProductModel{}).Where("id = ?", id).
			UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
			logger.Warn("Failed to increment view count for product %d: %v", id, err)
		}
	}()

	p.cache.Set(key, detail, p.productTTL())

	return detail, nil
}

// bulkUpdateColumns 允许批量更新的字段映射
var bulkUpdateColumns = map[string]string{
	"isFeatured":    "is_featured",
	"isActive":      "is_active",
	"productStatus": "product_status",
	"category":      "category",
}

// BulkUpdateProducts 批量更新产品的管理字段，返回实际更新的行数。
// 部分成功时以行数如实上报，不会默默宣称全部成功。
func (p *ProductLogic) BulkUpdateProducts(ids []int64, updates map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, NewValidationError("产品ID列表不能为空")
	}
	if len(updates) == 0 {
		return 0, NewValidationError("更新字段不能为空")
	}

	columns := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		column, ok := bulkUpdateColumns[field]
		if !ok {
			return 0, NewValidationError("字段不允许批量更新: " + field)
		}
		switch field {
		case "productStatus":
			status, _ := value.(string)
			if !model.ProductStatus(status).Valid() {
				return 0, NewValidationError("无效的产品状态: " + status)
			}
		case "category":
			category, _ := value.(string)
			if !model.Category(category).Valid() {
				return 0, NewValidationError("无效的产品类别: " + category)
			}
		}
		columns[column] = value
	}

	result := p.db.Model(&model.ProductModel{}).Where("id IN ?", ids).Updates(columns)
	if result.Error != nil {
		return 0, storeErr(result.Error)
	}

	p.cache.InvalidateAll()

	return result.RowsAffected, nil
}

// DeleteProduct 硬删除产品并级联删除其全部认购记录，单事务完成
func (p *ProductLogic) DeleteProduct(id int64) error {
	err := p.db.Transaction(func(tx *gorm.DB) error {
		var product model.ProductModel
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Message: "产品不存在"}
			}
			return storeErr(err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&model.PledgeModel{}).Error; err != nil {
			return storeErr(err)
		}
		if err := tx.Delete(&model.ProductModel{}, id).Error; err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.cache.InvalidateAll()

	return nil
}

// IncrementShareCount 分享计数自增
func (p *ProductLogic) IncrementShareCount(id int64) error {
	result := p.db.Model(&model.ProductModel{}).Where("id = ?", id).
		UpdateColumn("share_count", gorm.Expr("share_count + 1"))
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Message: "产品不存在"}
	}
	return nil
}

func (p *ProductLogic) listTTL() time.Duration {
	return ttlSeconds(p.cacheCfg.ListTTL, 300)
}

func (p *ProductLogic) searchTTL() time.Duration {
	return ttlSeconds(p.cacheCfg.SearchTTL, 120)
}

func (p *ProductLogic) productTTL() time.Duration {
	return ttlSeconds(p.cacheCfg.ProductTTL, 120)
}

func ttlSeconds(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

func boolParam(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
