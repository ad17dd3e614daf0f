package ta

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Target 同步目标
type Target string

const (
	// TargetRoles 角色快照（用户视图）
	TargetRoles Target = "roles"
	// TargetOrders 充值订单（recharge_complete 事件，关联 sdk_order_purchase 取支付渠道）
	TargetOrders Target = "orders"
	// TargetLastLogin 最后登录时间（role_login 事件按账号聚合）
	TargetLastLogin Target = "last_login"
	// TargetBehavior 行为计数（按用户/事件名聚合）
	TargetBehavior Target = "behavior"
)

// Views 查询涉及的视图与维度表
type Views struct {
	Event  string // 事件视图，如 v_event_22
	User   string // 用户视图，如 ta.v_user_22
	CpsDim string // CPS 维度表
}

// QueryParams 查询参数。日期为 YYYY-MM-DD，闭区间；Limit 为 0 表示不限制行数。
type QueryParams struct {
	StartDate string
	EndDate   string
	Limit     int
}

func (p QueryParams) validate() error {
	if p.StartDate == "" && p.EndDate != "" {
		return fmt.Errorf("query params: end date without start date")
	}
	for _, d := range []string{p.StartDate, p.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return fmt.Errorf("query params: invalid date %q: %w", d, err)
		}
	}
	if p.StartDate != "" && p.EndDate != "" && p.EndDate < p.StartDate {
		return fmt.Errorf("query params: end date %s before start date %s", p.EndDate, p.StartDate)
	}
	return nil
}

// BuildQuery 构建同步目标对应的查询语句。
// 纯函数：日期与行数上限是仅有的插值点，统一在这里校验后拼接。
func BuildQuery(v Views, target Target, p QueryParams) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}
	switch target {
	case TargetRoles:
		return buildRoleQuery(v, p), nil
	case TargetOrders:
		if p.StartDate == "" {
			return "", fmt.Errorf("order query requires a start date")
		}
		return buildOrderQuery(v, p), nil
	case TargetLastLogin:
		if p.StartDate == "" {
			return "", fmt.Errorf("last login query requires a start date")
		}
		return buildLastLoginQuery(v, p), nil
	case TargetBehavior:
		if p.StartDate == "" {
			return "", fmt.Errorf("behavior query requires a start date")
		}
		return buildBehaviorQuery(v, p), nil
	default:
		return "", fmt.Errorf("unknown sync target: %s", target)
	}
}

func buildRoleQuery(v Views, p QueryParams) string {
	var b strings.Builder
	b.WriteString(`SELECT
  "#user_id",
  "#account_id",
  "create_role_id" AS role_id,
  "current_role_name" AS role_name,
  "current_level" AS role_level,
  "current_vip_level" AS vip_level,
  "create_server_id" AS server_id,
  "create_server_name" AS server_name,
  "tf_country" AS country,
  "create_dev_type" AS dev_type,
  "create_channel_id" AS channel_id,
  "total_recharge_usd",
  "total_recharge_times",
  "total_login_days",
  "#active_time" AS register_time,
  "sdk_last_login_time" AS last_login_time,
  "tf_medium"
FROM `)
	b.WriteString(v.User)
	b.WriteString(`
WHERE "create_role_id" IS NOT NULL
  AND (
    "tf_medium" ILIKE 'Organic'
    OR "tf_medium" ILIKE '%自然量%'
    OR "tf_medium" ILIKE 'WA\_CPS\_link%'
  )`)
	if p.StartDate != "" {
		end := p.EndDate
		if end == "" {
			end = p.StartDate
		}
		fmt.Fprintf(&b, `
  AND "#active_time" >= TIMESTAMP '%s 00:00:00'
  AND "#active_time" < TIMESTAMP '%s 23:59:59'`, p.StartDate, end)
	}
	b.WriteString(`
ORDER BY "#active_time" DESC`)
	writeLimit(&b, p.Limit)
	return b.String()
}

func buildOrderQuery(v Views, p QueryParams) string {
	end := p.EndDate
	if end == "" {
		end = p.StartDate
	}
	// sdk_order_purchase 事件与主事件流存在时区偏差，左表窗口前移一天兜底
	sdkStart := shiftDate(p.StartDate, -1)

	var b strings.Builder
	b.WriteString(`SELECT
  order_info."game_order_id",
  order_info."role_id",
  order_info."role_name",
  order_info."role_level",
  order_info."server_id",
  order_info."server_name",
  order_info."#country",
  order_info."dev_type",
  order_info."channel_id",
  order_info."goods_id",
  order_info."pay_amount_usd",
  order_info."currency_type",
  order_info."currency_amount",
  order_info."recharge_type",
  order_info."is_sandbox",
  order_info."#event_time",
  publish_info."pay_type"
FROM (
  SELECT * FROM `)
	b.WriteString(v.Event)
	fmt.Fprintf(&b, `
  WHERE "$part_event" = 'recharge_complete'
    AND "$part_date" >= '%s' AND "$part_date" <= '%s'
) AS order_info
LEFT JOIN (
  SELECT "game_order_id", "pay_type"
  FROM %s
  WHERE "$part_event" = 'sdk_order_purchase'
    AND "$part_date" >= '%s'
    AND "$part_date" <= '%s'
) AS publish_info
ON order_info."game_order_id" = publish_info."game_order_id"
ORDER BY order_info."#event_time" DESC`, p.StartDate, end, v.Event, sdkStart, end)
	writeLimit(&b, p.Limit)
	return b.String()
}

func buildLastLoginQuery(v Views, p QueryParams) string {
	end := p.EndDate
	if end == "" {
		end = p.StartDate
	}
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT
  "#account_id" AS account_id,
  MAX("#event_time") AS last_login_time,
  "server_id",
  "role_name",
  "server_name"
FROM %s
WHERE "$part_event" = 'role_login'
  AND "$part_date" BETWEEN '%s' AND '%s'
  AND "#event_time" BETWEEN CAST('%s 00:00:00.000' AS TIMESTAMP)
      AND CAST('%s 23:59:59.999' AS TIMESTAMP)
GROUP BY "#account_id", "server_id", "role_name", "server_name"`,
		v.Event, p.StartDate, end, p.StartDate, end)
	return b.String()
}

func buildBehaviorQuery(v Views, p QueryParams) string {
	end := p.EndDate
	if end == "" {
		end = p.StartDate
	}
	var b strings.Builder
	fmt.Fprintf(&b, `SELECT
  "#user_id" AS user_id,
  "#event_name" AS event_name,
  COUNT(*) AS event_count,
  MAX("#event_time") AS last_event_time
FROM %s
WHERE "$part_date" BETWEEN '%s' AND '%s'
  AND "#event_name" IN ('role_create', 'recharge_complete', 'login', 'task_finish')
GROUP BY "#user_id", "#event_name"`, v.Event, p.StartDate, end)
	return b.String()
}

func writeLimit(b *strings.Builder, limit int) {
	if limit > 0 {
		fmt.Fprintf(b, "\nLIMIT %d", limit)
	}
}

// shiftDate 日期偏移，入参已通过校验
func shiftDate(date string, days int) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}
