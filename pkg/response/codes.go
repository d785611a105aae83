package response

// 业务错误码
const (
	CodeParamError    = 10001 // 参数校验失败
	CodeUnauthorized  = 10002 // 未认证或 token 无效
	CodeForbidden     = 10003 // 无权限
	CodeRateLimited   = 10004 // 请求过于频繁
	CodeBodyTooLarge  = 10005 // 请求体过大
	CodeBadCredential = 11001 // 邮箱或密码错误
	CodeTokenExpired  = 11002 // token 已过期
	CodeTokenInvalid  = 11003 // token 无效或已使用
	CodeConflict      = 12001 // 资源冲突（重复注册、并发修改）
	CodeNotFound      = 20001 // 资源不存在
	CodeInternal      = 50000 // 服务器内部错误
)
