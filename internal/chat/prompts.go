// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/jeranaias/hisassist/internal/classify"
	"github.com/jeranaias/hisassist/internal/routes"
)

// =============================================================================
// SYSTEM PROMPTS
// =============================================================================

const basePrompt = "Bạn là trợ lý ảo của phần mềm quản lý bệnh viện. " +
	"Chỉ trả lời về phần mềm: mở màn hình, đổi giao diện, hướng dẫn sử dụng. " +
	"Trả lời ngắn gọn, lịch sự, bằng ngôn ngữ của người dùng. " +
	"Tuyệt đối không trả lời chủ đề ngoài phần mềm."

// systemPrompt returns the intent-specific instruction block.
func systemPrompt(intent classify.Intent, hotline string) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	switch intent {
	case classify.IntentNav:
		b.WriteString(" Người dùng muốn mở một màn hình: hãy gọi công cụ nav với key phù hợp, không mô tả đường dẫn bằng chữ.")
	case classify.IntentTheme:
		b.WriteString(" Người dùng muốn đổi giao diện: hãy gọi công cụ theme với mode phù hợp.")
	case classify.IntentITSupport:
		b.WriteString(" Người dùng gặp sự cố kỹ thuật: hướng dẫn bước kiểm tra đơn giản, và luôn nhắc hotline IT " + hotline + " nếu không tự khắc phục được.")
	case classify.IntentFeatureHelp:
		b.WriteString(" Người dùng cần hướng dẫn sử dụng tính năng: giải thích từng bước ngắn gọn.")
	}

	b.WriteString(" Nếu không chắc chắn, mời người dùng gọi hotline IT " + hotline + ".")
	return b.String()
}

// =============================================================================
// LOCALIZED ORCHESTRATOR MESSAGES
// =============================================================================

func throttleMessage(lang classify.Language, retryAfterSecs int) string {
	secs := strconv.Itoa(retryAfterSecs)
	if lang == classify.LangEN {
		return "You're sending messages a bit fast. Please wait about " + secs + " seconds and try again."
	}
	return "Bạn đang gửi tin nhắn hơi nhanh. Vui lòng chờ khoảng " + secs + " giây rồi thử lại nhé."
}

func apologyMessage(lang classify.Language, hotline string) string {
	if lang == classify.LangEN {
		return "Sorry, I can't answer right now. Please try again shortly or call the IT hotline at " + hotline + "."
	}
	return "Xin lỗi, tôi chưa thể trả lời lúc này. Bạn thử lại sau ít phút hoặc gọi hotline IT " + hotline + " nhé."
}

func offlineMessage(lang classify.Language, hotline string) string {
	if lang == classify.LangEN {
		return "The assistant is temporarily unavailable. For urgent help, call the IT hotline at " + hotline + "."
	}
	return "Trợ lý tạm thời gián đoạn. Nếu cần gấp, bạn vui lòng gọi hotline IT " + hotline + "."
}

// disambiguationMessage renders a numbered candidate list when several
// screens match a navigation request.
func disambiguationMessage(lang classify.Language, hits []routes.Info) string {
	var b strings.Builder
	if lang == classify.LangEN {
		b.WriteString("I found several matching screens. Which one would you like?\n")
	} else {
		b.WriteString("Tôi tìm thấy nhiều màn hình phù hợp. Bạn muốn mở màn hình nào?\n")
	}
	for i, r := range hits {
		b.WriteString(strconv.Itoa(i+1) + ". " + r.Title + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func welcomeMessage(userName string) string {
	if userName == "" {
		return "Xin chào! Tôi có thể mở màn hình, đổi giao diện hoặc hướng dẫn bạn sử dụng phần mềm."
	}
	return "Xin chào " + userName + "! Tôi có thể mở màn hình, đổi giao diện hoặc hướng dẫn bạn sử dụng phần mềm."
}
