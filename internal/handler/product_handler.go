package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blues/ivp/internal/logger"
	"github.com/blues/ivp/internal/logic"
	"github.com/blues/ivp/internal/model"
	"github.com/blues/ivp/internal/storage"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productLogic *logic.ProductLogic
}

func NewProductHandler(productLogic *logic.ProductLogic) *ProductHandler {
	return &ProductHandler{productLogic: productLogic}
}

// CreateProduct 创建产品，multipart表单提交，媒体文件随表单上传
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	input := &logic.CreateProductInput{
		ProductTitle:     c.PostForm("productTitle"),
		Description:      c.PostForm("description"),
		ArtistName:       c.PostForm("artistName"),
		ProducerName:     c.PostForm("producerName"),
		LabelName:        c.PostForm("labelName"),
		Category:         model.Category(c.PostForm("category")),
		Genre:            model.Genre(c.PostForm("genre")),
		ExpectedDuration: c.PostForm("expectedDuration"),
		ProductStatus:    model.ProductStatus(c.PostForm("productStatus")),
		YoutubeLink:      c.PostForm("youtubeLink"),
		IsFeatured:       c.PostForm("isFeatured") == "true",
	}

	input.TotalBudget, _ = strconv.ParseFloat(c.PostForm("totalBudget"), 64)
	input.MinimumInvestment, _ = strconv.ParseFloat(c.PostForm("minimumInvestment"), 64)

	if v := c.PostForm("isActive"); v != "" {
		active := v != "false"
		input.IsActive = &active
	}
	if v := c.PostForm("fundingDeadline"); v != "" {
		if deadline, err := time.Parse(time.RFC3339, v); err == nil {
			input.FundingDeadline = &deadline
		}
	}
	input.TargetAudience = parseStringArray(c.PostForm("targetAudience"))
	input.Tags = parseStringArray(c.PostForm("tags"))

	// 保存上传文件到临时目录，交给logic层统一上传
	media, tmpDir, err := h.collectMediaFiles(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "文件接收失败: "+err.Error())
		return
	}
	if tmpDir != "" {
		defer os.RemoveAll(tmpDir)
	}
	input.Media = media

	product, err := h.productLogic.CreateProduct(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "产品创建成功", gin.H{"product": product})
}

// collectMediaFiles 从multipart表单收集媒体文件到临时目录
func (h *ProductHandler) collectMediaFiles(c *gin.Context) (*storage.MediaSet, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// 没有附带文件的纯表单提交
		return &storage.MediaSet{}, "", nil
	}

	tmpDir, err := os.MkdirTemp("", "ivp-upload-*")
	if err != nil {
		return nil, "", err
	}

	saveOne := func(field string) (string, error) {
		files := form.File[field]
		if len(files) == 0 {
			return "", nil
		}
		return h.saveUploadedFile(c, files[0], tmpDir)
	}

	media := &storage.MediaSet{}
	fields := []struct {
		name   string
		target *string
	}{
		{"coverImage", &media.CoverImage},
		{"albumArt", &media.AlbumArt},
		{"posterImage", &media.PosterImage},
		{"videoThumbnail", &media.VideoThumbnail},
		{"videoFile", &media.VideoFile},
		{"demoTrack", &media.DemoTrack},
		{"fullTrack", &media.FullTrack},
	}
	for _, f := range fields {
		path, err := saveOne(f.name)
		if err != nil {
			os.RemoveAll(tmpDir)
			return nil, "", err
		}
		*f.target = path
	}

	gallery := form.File["galleryImages"]
	if len(gallery) > model.MaxGalleryImages {
		gallery = gallery[:model.MaxGalleryImages]
	}
	for _, file := range gallery {
		path, err := h.saveUploadedFile(c, file, tmpDir)
		if err != nil {
			os.RemoveAll(tmpDir)
			return nil, "", err
		}
		media.GalleryImages = append(media.GalleryImages, path)
	}

	return media, tmpDir, nil
}

func (h *ProductHandler) saveUploadedFile(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// ListProducts 获取产品列表
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := buildProductFilter(c)

	result, err := h.productLogic.GetProducts(filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", result)
}

// SearchProducts 搜索产品
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	filter := buildProductFilter(c)
	filter.Search = c.Query("q")
	if v := c.Query("sortBy"); v == "relevance" || v == "" {
		filter.SortBy = "relevance"
	}

	result, err := h.productLogic.SearchProducts(filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", result)
}

// GetProduct 获取产品详情
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	detail, err := h.productLogic.GetProduct(id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", detail)
}

// BulkUpdateRequest 批量更新请求
type BulkUpdateRequest struct {
	ProductIds []int64                `json:"productIds" binding:"required"`
	Updates    map[string]interface{} `json:"updates" binding:"required"`
}

// BulkUpdateProducts 批量更新产品管理字段
func (h *ProductHandler) BulkUpdateProducts(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	modified, err := h.productLogic.BulkUpdateProducts(req.ProductIds, req.Updates)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK,
		strconv.FormatInt(modified, 10)+"个产品更新成功",
		gin.H{"modifiedCount": modified})
}

// DeleteProduct 删除产品并级联删除其认购记录
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	if err := h.productLogic.DeleteProduct(id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "产品已删除", nil)
}

// ShareProduct 分享计数
func (h *ProductHandler) ShareProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	if err := h.productLogic.IncrementShareCount(id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "分享计数已更新", nil)
}

// buildProductFilter 从查询参数构造过滤条件
func buildProductFilter(c *gin.Context) *logic.ProductFilter {
	filter := &logic.ProductFilter{
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "12"))
	filter.MinBudget, _ = strconv.ParseFloat(c.Query("minBudget"), 64)
	filter.MaxBudget, _ = strconv.ParseFloat(c.Query("maxBudget"), 64)

	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		filter.Featured = &featured
	}
	if v := c.DefaultQuery("active", "true"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	return filter
}

// parseStringArray 解析JSON数组形式的表单字段，解析失败返回空数组
func parseStringArray(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Debug("Failed to parse string array field: %v", err)
		return nil
	}
	return items
}
