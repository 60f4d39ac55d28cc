// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tool

import "github.com/jeranaias/hisassist/internal/classify"

// Localized execution results.

func navConfirmMessage(lang classify.Language, title string) string {
	if lang == classify.LangEN {
		return "Opening " + title + "."
	}
	return "Đang mở " + title + "."
}

func alreadyHereMessage(lang classify.Language, title string) string {
	if lang == classify.LangEN {
		return "You are already on " + title + "."
	}
	return "Bạn đang ở màn hình " + title + " rồi."
}

func navNotFoundMessage(lang classify.Language, key string) string {
	if lang == classify.LangEN {
		if key == "" {
			return "I couldn't tell which screen to open. Please name the screen."
		}
		return "I couldn't find a screen matching \"" + key + "\". It may not exist or you may not have access."
	}
	if key == "" {
		return "Tôi chưa rõ bạn muốn mở màn hình nào. Bạn nêu tên màn hình giúp nhé."
	}
	return "Tôi không tìm thấy màn hình \"" + key + "\". Có thể màn hình không tồn tại hoặc bạn chưa được cấp quyền."
}

func themeResultMessage(lang classify.Language, dark bool) string {
	if lang == classify.LangEN {
		if dark {
			return "Switched to dark mode."
		}
		return "Switched to light mode."
	}
	if dark {
		return "Đã chuyển sang giao diện tối."
	}
	return "Đã chuyển sang giao diện sáng."
}
