package task

import (
	"github.com/blues/ivp/internal/cache"
	"github.com/blues/ivp/internal/config"
	"github.com/blues/ivp/internal/logger"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	cache     cache.ResultCache
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, rc cache.ResultCache, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		cache:     rc,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, rc cache.ResultCache, cfg *config.Config) *Manager {
	manager := NewManager(db, rc, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册募资计数对账任务
	m.registerJob(NewReconcileJob(m.db, m.cache, m.config))
	// 注册募资截止任务
	m.registerJob(NewDeadlineJob(m.db, m.cache, m.config))
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
