package errors

import "errors"

// ErrOptimisticLock 记录在读取后已被其他写入者修改
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")

// ErrConditionFailed 条件更新未命中任何行，受保护的列已不是预期值
var ErrConditionFailed = errors.New("conditional update matched no row")

// ErrDuplicate 插入违反唯一约束
var ErrDuplicate = errors.New("record violates a unique constraint")
