package services

import "babykicks-backend/internal/models"

// Fixed localized strings used by the deterministic fallback paths. Advisory
// text from the model is never authoritative; these strings are, because they
// are what the user sees when the model is unavailable.

func disclaimerSuffix(lang models.Language) string {
	if lang == models.LangZH {
		return " (AI分析结果仅供参考)"
	}
	return " (AI Result - For Reference Only)"
}

func lowMovementMessage(lang models.Language) string {
	if lang == models.LangZH {
		return "胎动次数偏少"
	}
	return "Movement seems lower than standard."
}

func normalMovementMessage(lang models.Language) string {
	if lang == models.LangZH {
		return "胎动正常"
	}
	return "Movement looks normal."
}

func guidelineContext(lang models.Language) string {
	if lang == models.LangZH {
		return "医学建议2小时内有效胎动应大于10次，或1小时大于3次。"
	}
	return "Standard advice is 10 kicks in 2 hours, or 3 in 1 hour."
}

func sessionRecordedMessage(lang models.Language) string {
	if lang == models.LangZH {
		return "记录已保存"
	}
	return "Session recorded."
}

// placeholderInsight is returned, but never cached, when the advisory fetch is
// unavailable or fails, so a later retry can still populate the cache.
func placeholderInsight(week int, lang models.Language) models.WeeklyInsight {
	if lang == models.LangZH {
		return models.WeeklyInsight{
			Week:            week,
			MomSymptoms:     "无法加载数据 (请重试)",
			BabyDevelopment: "保持轻松心情",
			MedicalAdvice:   "请咨询医生",
			Nutrition:       "均衡饮食",
			Shopping:        "",
		}
	}
	return models.WeeklyInsight{
		Week:            week,
		MomSymptoms:     "Could not load data.",
		BabyDevelopment: "Stay relaxed.",
		MedicalAdvice:   "Consult your doctor.",
		Nutrition:       "Balanced diet.",
		Shopping:        "",
	}
}
