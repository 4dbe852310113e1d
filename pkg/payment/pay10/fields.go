package pay10

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"paydash/pkg/payment/types"
)

const (
	pairSeparator  = "~"
	valueSeparator = "="
)

// ParseFields 将解密后的文本解析为平铺的字符串字典
// 优先按 JSON 对象解析，失败时按 KEY=VALUE~KEY=VALUE 解析，每对只按第一个 = 切分
func ParseFields(text string) (map[string]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: decrypted payload is not valid UTF-8", types.ErrParse)
	}

	if fields, ok := parseJSON(text); ok {
		return fields, nil
	}

	fields := make(map[string]string)
	for _, pair := range strings.Split(text, pairSeparator) {
		key, value, found := strings.Cut(pair, valueSeparator)
		if !found || key == "" {
			continue
		}
		fields[key] = value
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields recovered", types.ErrParse)
	}
	return fields, nil
}

func parseJSON(text string) (map[string]string, bool) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var object map[string]interface{}
	if err := decoder.Decode(&object); err != nil || object == nil {
		return nil, false
	}

	fields := make(map[string]string, len(object))
	for key, value := range object {
		fields[key] = flatten(value)
	}
	return fields, true
}

// flatten 标量转字符串，嵌套结构保留为紧凑 JSON 文本
func flatten(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case map[string]interface{}, []interface{}:
		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(v); err != nil {
			return ""
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return cast.ToString(v)
	}
}

// EncodeFields 按键名排序后拼接为 KEY=VALUE~KEY=VALUE
func EncodeFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+valueSeparator+fields[key])
	}
	return strings.Join(pairs, pairSeparator)
}
