// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

// Localized engine responses. Every path that refuses or escalates names
// the IT hotline so the user always has a human fallback.

func refusalMessage(lang Language, reason blockReason, hotline string) string {
	switch reason {
	case blockInjection, blockHarmful:
		if lang == LangEN {
			return "I can't help with that request. For anything outside the portal, please contact the IT hotline at " + hotline + "."
		}
		return "Tôi không thể hỗ trợ yêu cầu này. Nếu cần trợ giúp thêm, bạn vui lòng liên hệ hotline IT " + hotline + " nhé."
	default:
		if lang == LangEN {
			return "I can only help with this hospital portal: opening screens, switching the theme, and guiding features. For other topics, please call the IT hotline at " + hotline + "."
		}
		return "Tôi chỉ hỗ trợ các chức năng của phần mềm: mở màn hình, đổi giao diện và hướng dẫn sử dụng. Với các chủ đề khác, bạn vui lòng gọi hotline IT " + hotline + "."
	}
}

func notUnderstoodMessage(lang Language) string {
	if lang == LangEN {
		return "Sorry, I didn't catch that. Could you describe what you need in a bit more detail?"
	}
	return "Xin lỗi, tôi chưa hiểu ý bạn. Bạn mô tả rõ hơn một chút được không?"
}

func capabilitiesMessage(lang Language, hotline string) string {
	if lang == LangEN {
		return "I can open portal screens, switch between light and dark themes, and guide you through features. " +
			"If your request is about something else, please contact the IT hotline at " + hotline + "."
	}
	return "Tôi có thể mở các màn hình của phần mềm, đổi giao diện sáng/tối và hướng dẫn sử dụng tính năng. " +
		"Nếu bạn cần việc khác, vui lòng liên hệ hotline IT " + hotline + "."
}

func forgotPasswordMessage(lang Language, hotline string) string {
	if lang == LangEN {
		return "For password resets, please contact the IT hotline at " + hotline + " so the administrator can verify your identity and reset it for you."
	}
	return "Để cấp lại mật khẩu, bạn vui lòng liên hệ hotline IT " + hotline + " để quản trị viên xác minh và đặt lại mật khẩu giúp bạn."
}

func accountLockedMessage(lang Language, hotline string) string {
	if lang == LangEN {
		return "Your account is locked after 5 failed sign-in attempts. Please call the IT hotline at " + hotline + " to have it unlocked."
	}
	return "Tài khoản bị khóa sau 5 lần đăng nhập sai. Bạn vui lòng gọi hotline IT " + hotline + " để được mở khóa."
}
