package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"StudyGate/storage/redis"
)

// 学生当前状态缓存，状态查询是热路径，每次状态流转时失效

const (
	studentStatusPrefix = "student:status"
	studentStatusTTL    = 12 * time.Hour
)

// StudentStatusCache 学生状态缓存结构
type StudentStatusCache struct {
	Status           string `json:"status"`
	FollowUpRequired bool   `json:"follow_up_required"`
	OpenTicketID     int64  `json:"open_ticket_id,omitempty"`
	UpdatedAt        int64  `json:"updated_at"` // 写入时间戳，充当版本号
}

func SetStudentStatus(ctx context.Context, studentID int64, status *StudentStatusCache) error {
	key := redis.Key(studentStatusPrefix, strconv.FormatInt(studentID, 10))

	data, err := json.Marshal(status)
	if err != nil {
		return err
	}

	return redis.Client().Set(ctx, key, data, studentStatusTTL).Err()
}

// GetStudentStatus 读取状态缓存，未命中返回 nil
func GetStudentStatus(ctx context.Context, studentID int64) (*StudentStatusCache, error) {
	key := redis.Key(studentStatusPrefix, strconv.FormatInt(studentID, 10))

	data, err := redis.Client().Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var status StudentStatusCache
	if err := json.Unmarshal(data, &status); err != nil {
		// 缓存损坏按未命中处理，下一次写入会覆盖
		return nil, nil
	}

	return &status, nil
}

// InvalidateStudentStatus 状态流转后删除缓存
func InvalidateStudentStatus(ctx context.Context, studentID int64) error {
	key := redis.Key(studentStatusPrefix, strconv.FormatInt(studentID, 10))
	return redis.Client().Del(ctx, key).Err()
}
