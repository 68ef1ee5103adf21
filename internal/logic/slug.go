package logic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blues/ivp/internal/model"
	"gorm.io/gorm"
)

const maxSlugLength = 100

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 根据产品标题生成URL安全的基础slug：
// 转小写，连续的非字母数字字符替换为单个连字符，去掉首尾连字符，截断到100字符
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// GenerateSlug 生成全库唯一的slug。基础slug冲突时依次追加-1、-2等后缀，
// 直到不再冲突。excludeId大于0时排除该记录自身，用于存量数据补齐slug。
// slug只在创建时生成，标题修改不会重新生成，保证链接稳定。
func GenerateSlug(db *gorm.DB, title string, excludeId int64) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "product"
	}

	slug := base
	for i := 1; ; i++ {
		query := db.Model(&model.ProductModel{}).Where("slug = ?", slug)
		if excludeId > 0 {
			query = query.Where("id <> ?", excludeId)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", storeErr(err)
		}
		if count == 0 {
			return slug, nil
		}

		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// BackfillSlugs 为存量产品补齐slug，已有slug的记录不做任何修改
func BackfillSlugs(db *gorm.DB) (int64, error) {
	var products []model.ProductModel
	if err := db.Where("slug = '' OR slug IS NULL").Find(&products).Error; err != nil {
		return 0, storeErr(err)
	}

	var updated int64
	for _, product := range products {
		slug, err := GenerateSlug(db, product.ProductTitle, product.Id)
		if err != nil {
			return updated, err
		}
		if err := db.Model(&model.ProductModel{}).Where("id = ?", product.Id).
			Update("slug", slug).Error; err != nil {
			return updated, storeErr(err)
		}
		updated++
	}

	return updated, nil
}
