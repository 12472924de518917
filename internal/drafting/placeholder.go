package drafting

import (
	"fmt"

	"github.com/ashureev/draft-studio/internal/domain"
)

// Placeholder content returned when no model is configured.

func placeholderCreate() map[string]string {
	return NormalizeCreate(map[string]string{
		"name":           "홍길동(모의)",
		"idNumber":       "900101-1234567",
		"address":        "서울특별시 강남구 테헤란로 123",
		"job":            "회사원",
		"officeAddress":  "강남구 역삼동 솔루션 빌딩",
		"accusedName":    "임꺽정(모의)",
		"accusedPhone":   "010-9876-5432",
		"accusedAddress": "인천광역시 남동구...",
		"purpose":        "[AI 재작성 모의 데이터] 고소인은 피고소인을 엄벌에 처해주시기 바랍니다.",
		"facts":          "[AI 재작성 모의 데이터] 피고소인은 고소인을 기망하여 금원을 편취하였습니다.",
		"reasons":        "[AI 재작성 모의 데이터] 피고소인의 죄질이 불량하며 증거 인멸의 우려가 있습니다.",
	})
}

func placeholderRegenerate(section domain.Section) map[string]string {
	return map[string]string{
		string(section): fmt.Sprintf("[AI %s 재작성 모의 데이터] 해당 섹션이 문맥에 맞춰 다시 작성되었습니다. (API 키 미설정)", section),
	}
}

func placeholderChat(section domain.Section) map[string]string {
	return map[string]string{
		ResponseKey: fmt.Sprintf("[AI %s 모의 응답] API 키가 설정되지 않아 모의 응답을 반환합니다.", section.Label()),
	}
}
