package ledger

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 按天筛选时使用的日期格式
const DateLayout = "2006-01-02"

// ParseDateRange 解析按天给出的起止日期，两端都包含
//
// 两个参数都为空时返回 nil, nil；只给一端、格式错误或结束早于开始时返回 ErrInvalidInput。
// 结束时间取结束日期当天的最后一纳秒，当天任意时刻（含亚秒）的交易都落在区间内。
func ParseDateRange(start, end string, loc *time.Location) (*time.Time, *time.Time, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil, nil
	}
	if start == "" || end == "" {
		return nil, nil, fmt.Errorf("%w: 开始日期与结束日期必须同时提供", ErrInvalidInput)
	}
	if loc == nil {
		loc = time.Local
	}

	from, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 开始日期格式错误，应为 %s", ErrInvalidInput, DateLayout)
	}
	day, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 结束日期格式错误，应为 %s", ErrInvalidInput, DateLayout)
	}
	if day.Before(from) {
		return nil, nil, fmt.Errorf("%w: 结束日期不能早于开始日期", ErrInvalidInput)
	}
	to := day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &from, &to, nil
}
