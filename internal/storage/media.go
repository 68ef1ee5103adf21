package storage

import (
	"context"
	"sync"

	"github.com/blues/ivp/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// MediaSet 一次产品创建中待上传的全部本地媒体文件路径，字段可为空
type MediaSet struct {
	CoverImage     string
	AlbumArt       string
	PosterImage    string
	VideoThumbnail string
	VideoFile      string
	DemoTrack      string
	FullTrack      string
	GalleryImages  []string
}

// MediaURLs 上传完成后各字段对应的HTTPS地址
type MediaURLs struct {
	CoverImage     string
	AlbumArt       string
	PosterImage    string
	VideoThumbnail string
	VideoFile      string
	DemoTrack      string
	FullTrack      string
	GalleryImages  []string
}

// Empty 判断是否没有任何待上传文件
func (m *MediaSet) Empty() bool {
	return m == nil || (m.CoverImage == "" && m.AlbumArt == "" && m.PosterImage == "" &&
		m.VideoThumbnail == "" && m.VideoFile == "" && m.DemoTrack == "" &&
		m.FullTrack == "" && len(m.GalleryImages) == 0)
}

type uploadTask struct {
	localPath string
	kind      Kind
	assign    func(url string)
}

// UploadAll 通过协程池并发上传整组媒体文件。任何一个文件失败则
// 整组失败并取消其余上传，调用方据此回滚创建事务，不会留下
// 媒体不完整的产品记录。
func UploadAll(ctx context.Context, up Uploader, media *MediaSet, poolSize int) (*MediaURLs, error) {
	urls := &MediaURLs{}
	if media.Empty() {
		return urls, nil
	}

	var tasks []uploadTask
	addTask := func(localPath string, kind Kind, assign func(url string)) {
		if localPath != "" {
			tasks = append(tasks, uploadTask{localPath: localPath, kind: kind, assign: assign})
		}
	}

	addTask(media.CoverImage, KindImage, func(u string) { urls.CoverImage = u })
	addTask(media.AlbumArt, KindImage, func(u string) { urls.AlbumArt = u })
	addTask(media.PosterImage, KindImage, func(u string) { urls.PosterImage = u })
	addTask(media.VideoThumbnail, KindImage, func(u string) { urls.VideoThumbnail = u })
	addTask(media.VideoFile, KindVideo, func(u string) { urls.VideoFile = u })
	addTask(media.DemoTrack, KindAudio, func(u string) { urls.DemoTrack = u })
	addTask(media.FullTrack, KindAudio, func(u string) { urls.FullTrack = u })

	urls.GalleryImages = make([]string, len(media.GalleryImages))
	for i, localPath := range media.GalleryImages {
		idx := i
		addTask(localPath, KindImage, func(u string) { urls.GalleryImages[idx] = u })
	}

	if poolSize <= 0 {
		poolSize = 4
	}
	if poolSize > len(tasks) {
		poolSize = len(tasks)
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, task := range tasks {
		task := task
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}

			url, err := up.Upload(ctx, task.localPath, task.kind)
			if err != nil {
				logger.Error("Media upload failed for %s: %v", task.localPath, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}

			mu.Lock()
			task.assign(url)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			cancel()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return urls, nil
}
