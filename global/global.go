package global

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Process-wide handles, bound exactly once during config initialization.
var (
	DB      *gorm.DB
	RedisDB *redis.Client
	Logger  *zap.Logger
)
