// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mode

// Mode-dependent assistant text. The welcome message opens every fresh
// conversation; the canned reply is the non-networked fallback used by the
// offline and manual paths.

// WelcomeMessage returns the assistant greeting for m.
func WelcomeMessage(m Mode) string {
	switch m {
	case ModeOnline:
		return "Hello! I'm your RAG Assistant in online mode. I can help you analyze and discuss your documents with full cloud capabilities."
	case ModeOffline:
		return "Hello! I'm your RAG Assistant in offline mode. I can help you with locally stored documents using PyTesseract for OCR and Llama 3 for text generation."
	case ModeManual:
		return "Hello! I'm your RAG Assistant in manual mode. You have full control over document processing and analysis steps. Configure each pipeline stage according to your needs."
	}
	return ""
}

// CannedReply returns the simulated assistant answer for m.
func CannedReply(m Mode) string {
	switch m {
	case ModeOnline:
		return "I've analyzed your documents using our cloud processing. Based on the context provided in your uploaded files, I can tell you that..."
	case ModeOffline:
		return "I've analyzed your locally stored documents using PyTesseract OCR and Llama 3. Based on the available local context, I can tell you that..."
	case ModeManual:
		return "I've prepared the analysis steps. Would you like me to: 1) Extract key entities, 2) Perform semantic search, or 3) Generate a summary?"
	}
	return ""
}

// Alert returns the notice line shown under the chat for m, empty when no
// notice applies.
func Alert(m Mode) string {
	switch m {
	case ModeOffline:
		return "You're in offline mode using PyTesseract OCR and Llama 3 (8B) model."
	case ModeManual:
		return "Manual mode active. Configure and monitor each processing step."
	}
	return ""
}

// StatusBadge returns a short badge for the status bar.
func StatusBadge(m Mode) string {
	switch m {
	case ModeOnline:
		return "[ONLINE]"
	case ModeOffline:
		return "[OFFLINE]"
	case ModeManual:
		return "[MANUAL]"
	}
	return ""
}

// PipelineStages lists the manual-mode processing stages in order.
func PipelineStages() []string {
	return []string{"OCR", "Parsing", "Chunking", "Embedding", "Vector DB"}
}
