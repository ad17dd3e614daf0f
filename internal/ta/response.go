package ta

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyResponse 响应体为空
	ErrEmptyResponse = errors.New("ta: empty response")
	// ErrBadMetadata 元数据行解析失败
	ErrBadMetadata = errors.New("ta: invalid metadata line")
	// ErrAPIStatus 平台返回非零状态码
	ErrAPIStatus = errors.New("ta: api returned error status")
)

// metadata 响应首行结构
type metadata struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	Data          struct {
		Headers []string `json:"headers"`
	} `json:"data"`
}

// Result 查询结果。Headers 与每行 values 顺序一致；Malformed 为被跳过的坏行数。
type Result struct {
	Headers   []string
	Rows      [][]any
	Malformed int

	index map[string]int
}

// ParseResponse 解析多行响应体。
// 首行是元数据（状态码 + 列名），解析失败或状态码非零视为终止错误；
// 其余每行独立解析为一个 JSON 数组，坏行跳过计数，不影响整体。
func ParseResponse(raw []byte) (*Result, error) {
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, ErrEmptyResponse
	}

	var meta metadata
	if err := json.Unmarshal([]byte(lines[0]), &meta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadMetadata, truncate(lines[0], 200))
	}
	if meta.ReturnCode != 0 {
		return nil, fmt.Errorf("%w: %s (code: %d)", ErrAPIStatus, meta.ReturnMessage, meta.ReturnCode)
	}

	result := &Result{Headers: meta.Data.Headers}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var row []any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			result.Malformed++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	// 列名到下标的映射只构建一次，供所有行复用
	result.index = make(map[string]int, len(result.Headers))
	for i, h := range result.Headers {
		result.index[h] = i
	}
	return result, nil
}

// Row 返回第 i 行的字段访问器
func (r *Result) Row(i int) Row {
	return Row{values: r.Rows[i], index: r.index}
}

// Row 基于列名的类型化行访问器，所有取值方法对缺失/坏值安全返回默认值
type Row struct {
	values []any
	index  map[string]int
}

func (r Row) raw(name string) (any, bool) {
	idx, ok := r.index[name]
	if !ok || idx >= len(r.values) {
		return nil, false
	}
	v := r.values[idx]
	if v == nil {
		return nil, false
	}
	return v, true
}

// Str 字符串取值，缺失返回空串
func (r Row) Str(name string) string {
	v, ok := r.raw(name)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Int 整数取值，坏值返回 0
func (r Row) Int(name string) int {
	n, _ := r.IntStrict(name)
	return n
}

// IntStrict 整数取值，返回是否成功解析
func (r Row) IntStrict(name string) (int, bool) {
	v, ok := r.raw(name)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float 浮点取值，坏值返回 0
func (r Row) Float(name string) float64 {
	v, ok := r.raw(name)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Decimal 金额取值，坏值返回 0
func (r Row) Decimal(name string) decimal.Decimal {
	v, ok := r.raw(name)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Bool 布尔取值，"1"/"true" 视为真
func (r Row) Bool(name string) bool {
	v, ok := r.raw(name)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.TrimSpace(strings.ToLower(t))
		return s == "1" || s == "true"
	case float64:
		return t != 0
	default:
		return false
	}
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Time 时间取值，返回是否解析成功
func (r Row) Time(name string) (time.Time, bool) {
	s := strings.TrimSpace(r.Str(name))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
