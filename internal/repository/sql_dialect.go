package repository

import "gorm.io/gorm"

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := db.Dialector.Name()
	if name == "" {
		return "sqlite"
	}
	return name
}

// responseSecondsExpr 构建建议到响应的耗时（秒）表达式，兼容 sqlite 与 postgres。
func responseSecondsExpr(db *gorm.DB) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "EXTRACT(EPOCH FROM (responded_at - suggested_at))"
	default:
		// sqlite 没有时间差类型，用儒略日换算
		return "(julianday(responded_at) - julianday(suggested_at)) * 86400.0"
	}
}
