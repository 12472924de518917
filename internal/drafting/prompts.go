package drafting

import (
	"fmt"
	"strings"

	"github.com/ashureev/draft-studio/internal/domain"
	"github.com/ashureev/draft-studio/internal/intake"
)

const createSystemPrompt = `당신은 대한민국 법조계에서 수십 년간 경험을 쌓은 전문 변호사입니다. 사용자의 요청과 첨부파일 내용을 바탕으로, 법원에 즉시 제출해도 손색없는 수준의 '완성도 높은 고소장'을 작성하세요.

[섹션별 상세 작성 지침]
1. 고소취지: 단순히 죄명을 나열하는 것이 아니라, 피고소인의 행위가 어떤 법률 조항을 위반했는지 명확히 적시하고 '엄벌에 처해달라'는 취지를 법률적 용어를 사용하여 단호하게 서술하세요.
2. 범죄사실: 사건의 발단부터 전개, 결과에 이르기까지 시간순으로 매우 상세하게 서술하세요. 피고소인의 구체적인 행위, 범행의 수단과 방법, 고소인에게 입힌 직간접적 피해 등을 육하원칙에 입각하여 법률 실무 양식에 맞춰 풍성하게 작성하세요. (최소 10문장 이상)
3. 고소이유: 범행의 중대성, 피고소인의 악의성, 현재까지의 정황(사과 부재, 증거 인멸 시도 등), 고소인이 겪고 있는 육체적/정신적/경제적 고통을 논리적으로 서술하여 고소의 절박함을 부각하세요.

[JSON 응답 스키마 - 반드시 다음 키 이름을 사용하세요]
{
  "name": "고소인 성명",
  "idNumber": "고소인 주민번호",
  "address": "고소인 주소",
  "job": "고소인 직업",
  "officeAddress": "고소인 사무실주소",
  "phone": "고소인 전화번호",
  "email": "고소인 이메일",
  "accusedName": "피고소인 성명",
  "accusedPhone": "피고소인 연락처",
  "accusedAddress": "피고소인 주소",
  "purpose": "고소취지 내용",
  "facts": "범죄사실 내용",
  "reasons": "고소이유 내용"
}

[핵심 규칙]
- 모든 텍스트 필드는 반드시 한 페이지를 충분히 채울 수 있을 정도의 방대한 분량으로 작성하세요.
- 첨부파일의 내용(증거, 정황 등)을 최대한 구체적으로 반영하여 작성하세요. 파일 속에 구체적인 인명, 지명, 금액 등이 있다면 이를 누락 없이 포함하세요.
- 전문적인 법률 용어(예: 기망행위, 위계, 부작위, 법익 침해 등)를 적극 사용하여 문서의 공신력을 높이세요.`

const noAttachmentText = "첨부된 파일 내용이 없습니다."

// attachmentBlock renders the extracted files the way the create prompt embeds them.
func attachmentBlock(files []intake.Extracted) string {
	var b strings.Builder
	for _, f := range files {
		switch f.Status {
		case intake.StatusExtracted:
			fmt.Fprintf(&b, "\n[파일명: %s]\n%s\n", f.Name, f.Text)
		case intake.StatusFailed:
			fmt.Fprintf(&b, "\n[파일명: %s] %s\n", f.Name, intake.TextExtractionFailed)
		default:
			fmt.Fprintf(&b, "\n[파일명: %s] (미지원 파일 형식, 이름만 참조)\n", f.Name)
		}
	}
	return b.String()
}

func createUserPrompt(prompt string, files []intake.Extracted) string {
	combined := attachmentBlock(files)
	if combined == "" {
		combined = noAttachmentText
	}
	return fmt.Sprintf("사용자 지시어: %s\n\n[첨부파일 내용 분석 자료]\n%s\n\n위 내용을 바탕으로 고소장을 상세히 작성해줘.", prompt, combined)
}

func regenerateSystemPrompt(section domain.Section, current string) string {
	return fmt.Sprintf(`당신은 대한민국 전문 변호사입니다. 사용자가 작성 중인 고소장의 특정 섹션('%[1]s')을 다시 작성해달라고 요청했습니다.

[재작성 가이드라인]
1. 문맥 유지: 제공된 다른 섹션들의 내용(context)과 일관성을 유지하세요.
2. 전문성 강화: 기존 내용('%[2]s')을 바탕으로 더 논리적이고 전문적인 법률 용어를 사용하여 분량을 대폭 늘리세요.
3. 독립성: 다른 섹션의 내용은 수정하지 말고, 오직 '%[1]s' 섹션에 들어갈 내용만 생성하세요.
4. 응답 형식: 반드시 JSON 형식으로 응답하며, 키 이름은 '%[1]s' 하나만 사용하세요.`, section, current)
}

func regenerateUserPrompt(section domain.Section, current string, ctx domain.Sections) string {
	return fmt.Sprintf("[전체 문서 문맥]\n고소취지: %s\n범죄사실: %s\n고소이유: %s\n\n[현재 재작성 대상 섹션: %s]\n기존 내용: %s\n\n위 문맥과 기존 내용을 바탕으로 '%s' 부분을 더 풍성하고 전문적으로 재작성해줘.",
		ctx.Purpose, ctx.Facts, ctx.Reasons, section, current, section)
}

func orUnwritten(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(미작성)"
	}
	return s
}

func chatSystemPrompt(section domain.Section, ctx domain.Sections) string {
	label := section.Label()
	return fmt.Sprintf(`당신은 대한민국 전문 변호사이자 고소장 작성 전문가입니다. 현재 사용자가 고소장의 '%[1]s' 섹션을 작성하려고 합니다.

[역할]
- 사용자와 대화하며 해당 섹션에 필요한 정보를 수집하세요.
- 사용자의 상황을 이해하고, 전문적인 법률 용어를 사용하여 '%[1]s' 내용을 작성해 주세요.

[문맥 정보]
- 현재 고소취지: %[2]s
- 현재 범죄사실: %[3]s
- 현재 고소이유: %[4]s

[응답 규칙 - 매우 중요]
1. 응답은 반드시 법률 문서에 바로 적용할 수 있는 형식으로 작성하세요.
2. "네, 알겠습니다", "도움이 될 것입니다" 같은 대화체 표현을 절대 사용하지 마세요.
3. 응답 전체가 고소장의 '%[1]s' 본문으로 사용될 수 있어야 합니다.
4. 전문적이고 격식 있는 법률 문서 문체만 사용하세요.
5. 사용자가 정보를 제공하면, 그 정보를 바탕으로 즉시 법률 문서 형태의 '%[1]s' 내용을 작성하세요.

[좋은 응답 예시]
"피고소인의 위 행위는 형법 제347조 사기죄에 해당하는바, 피고소인을 사기죄로 고소하오니 엄벌에 처해주시기 바랍니다."

[나쁜 응답 예시]
"네, 말씀해주신 내용을 바탕으로 고소취지를 작성해 드리겠습니다. 다음과 같이 작성하면 좋을 것 같습니다:"`,
		label, orUnwritten(ctx.Purpose), orUnwritten(ctx.Facts), orUnwritten(ctx.Reasons))
}
