package pipeline

import "strings"

// ErrorKind classifies a failed pipeline action.
type ErrorKind string

// Error kinds surfaced to users. FetchUnavailable never appears here: an unavailable page is
// reported through empty text and, for the job posting, MissingContent.
const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindMissingContent    ErrorKind = "missing_content"
	KindExtractionFailed  ErrorKind = "extraction_failed"
	KindCompositionFailed ErrorKind = "composition_failed"
	KindEmptyUpload       ErrorKind = "empty_upload"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindUnreadableUpload  ErrorKind = "unreadable_upload"
	KindFileTooLarge      ErrorKind = "file_too_large"
	KindMissingResume     ErrorKind = "missing_resume"
	KindInvalidTransition ErrorKind = "invalid_transition"
)

// Locale selects the language of user-facing messages.
type Locale string

// Supported locales.
const (
	LocaleKorean  Locale = "ko"
	LocaleEnglish Locale = "en"
)

// DefaultLocale is used when no locale, or an unknown one, is requested.
const DefaultLocale = LocaleKorean

var messages = map[Locale]map[ErrorKind]string{
	LocaleKorean: {
		KindInvalidInput:      "채용 공고 URL을 입력해주세요.",
		KindMissingContent:    "채용 공고 내용을 가져올 수 없습니다. URL을 확인해주세요.",
		KindExtractionFailed:  "분석 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요.",
		KindCompositionFailed: "콘텐츠 생성 중 오류가 발생했습니다.",
		KindEmptyUpload:       "파일 내용이 비어있습니다.",
		KindUnsupportedFormat: "지원하지 않는 파일 형식입니다. PDF, DOCX, TXT, MD 파일을 업로드해주세요.",
		KindUnreadableUpload:  "파일을 읽는 중 오류가 발생했습니다. 다시 업로드해주세요.",
		KindFileTooLarge:      "파일이 너무 큽니다. 5MB 이하의 파일을 업로드해주세요.",
		KindMissingResume:     "이력서를 먼저 업로드해주세요.",
		KindInvalidTransition: "현재 단계에서는 수행할 수 없는 작업입니다.",
	},
	LocaleEnglish: {
		KindInvalidInput:      "Please enter the job posting URL.",
		KindMissingContent:    "Could not read the job posting. Please check the URL.",
		KindExtractionFailed:  "Something went wrong during analysis. Please try again shortly.",
		KindCompositionFailed: "Something went wrong while generating the content.",
		KindEmptyUpload:       "The file is empty.",
		KindUnsupportedFormat: "Unsupported file format. Please upload a PDF, DOCX, TXT or MD file.",
		KindUnreadableUpload:  "The file could not be read. Please upload it again.",
		KindFileTooLarge:      "The file is too large. Please upload a file of 5 MB or less.",
		KindMissingResume:     "Please upload your résumé first.",
		KindInvalidTransition: "This action is not available at the current step.",
	},
}

// ParseLocale maps a language tag such as "en-US" to a supported locale.
func ParseLocale(tag string) Locale {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if len(tag) >= 2 {
		switch Locale(tag[:2]) {
		case LocaleEnglish:
			return LocaleEnglish
		case LocaleKorean:
			return LocaleKorean
		}
	}
	return DefaultLocale
}

// Message returns the user-facing message for kind in locale.
func Message(kind ErrorKind, locale Locale) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[DefaultLocale]
	}
	if msg, ok := table[kind]; ok {
		return msg
	}
	return messages[DefaultLocale][KindExtractionFailed]
}
