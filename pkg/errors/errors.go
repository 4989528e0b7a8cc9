package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrStorageUnavailable 存储层不可用：整个事务（含审计写入）已回滚，不重试
var ErrStorageUnavailable = errors.New("存储服务不可用")
