package service

import "fmt"

// LinkCodec 负责深链接令牌的编码与解码.
// 令牌要么是批次号，要么是字符串化的归档消息 ID；区分两者是链接解析的职责，
// 编解码本身不做判断.
type LinkCodec struct {
	botUsername string
}

// NewLinkCodec 创建链接编解码器，botUsername 不含 @ 前缀.
func NewLinkCodec(botUsername string) *LinkCodec {
	return &LinkCodec{botUsername: botUsername}
}

// Encode 把令牌编码为深链接 URL.
func (c *LinkCodec) Encode(token string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", c.botUsername, token)
}

// Decode 从 start 参数还原令牌. 传输层已经做了反转义，这里是恒等映射；
// 畸形令牌不报错，只会在下游匹配不到任何记录.
func (c *LinkCodec) Decode(startParam string) string {
	return startParam
}
