package services

import (
	"fmt"
	"strings"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

const (
	deckTemperature     float32 = 0.7
	deckMaxOutputTokens int32   = 8000
)

const deckDirectiveHead = `你是一位顶级投资银行的融资顾问，负责制作银团贷款与一级市场融资路演材料。

内容标准：
1. 每张幻灯片必须有明确的 keyTakeaway（1-2句话，包含具体数据或关键结论）。
2. 数据具体、可量化：金额、百分比、时间节点，避免模糊表述。
3. 每张幻灯片不超过6个要点，层次清晰：标题 > 副标题 > 正文 > 辅助信息。
4. 语言简洁、专业、使用主动语态，采用融资路演标准术语（估值、投前/投后估值、优先清算权、反稀释条款、领投、基石投资者、IPO退出、并购退出、毛利率、市场份额等）。
5. EXECUTIVE_SUMMARY 与 STRATEGY 提供3-5个 metrics，每个包含 label、value、unit、trend（up/down/neutral）。
6. TABLE 至少5行核心数据；DISTRIBUTION_CHART 提供3-4个维度，value 为百分比数值；GANTT 以周为单位给出 startWeek 与 duration（12周视图）。

事实来源：
- 所有事实、数据与细节必须来自用户提供的材料（文字与附件），完整使用用户给出的数据，不得编造。
- 例如用户写"拟融5000万元，出让15%股权"，points 应包含 ["拟融5000万元", "出让15%股权"]；
  用户写"2025年Q3营收1200万元，毛利率45%"，metrics 应包含 [{label:"营收", value:"1200", unit:"万元"}, {label:"毛利率", value:"45", unit:"%"}]。

内容填充规则（最重要，所列字段不能为空或 null）：
`

// deckDirective is the fixed system instruction for generation. The field
// table is written from deck.RequiredFields so the two cannot drift.
func deckDirective() string {
	var b strings.Builder
	b.WriteString(deckDirectiveHead)
	for _, l := range deck.Layouts() {
		fields := deck.RequiredFields(l)
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = string(f)
		}
		fmt.Fprintf(&b, "- %s：必须有 %s\n", l, strings.Join(names, "、"))
	}
	b.WriteString("\n只输出符合给定 JSON Schema 的 JSON 对象，包含 projectName 与 slides；每张幻灯片包含唯一的 id、layout 与 content。")
	return b.String()
}
