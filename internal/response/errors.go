package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrInvalidID         ErrCode = "INVALID_ID"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrInvalidGradeLevel ErrCode = "INVALID_GRADE_LEVEL"
	ErrNationalIDMissing ErrCode = "NATIONAL_ID_REQUIRED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound             ErrCode = "NOT_FOUND"
	ErrRegistrationNotFound ErrCode = "REGISTRATION_NOT_FOUND"
	ErrConflict             ErrCode = "CONFLICT"
	ErrActionForbidden      ErrCode = "ACTION_FORBIDDEN"

	// ─── Admission ─────────────────────────────────────────────────────
	ErrDuplicateNationalID ErrCode = "DUPLICATE_NATIONAL_ID"
	ErrAdmissionClosed     ErrCode = "ADMISSION_CLOSED"
	ErrProgramNotAllowed   ErrCode = "PROGRAM_NOT_ALLOWED"
	ErrCaptchaInvalid      ErrCode = "CAPTCHA_INVALID"
	ErrWizardNotFound      ErrCode = "WIZARD_NOT_FOUND"
	ErrWizardBusy          ErrCode = "WIZARD_BUSY"
	ErrIllegalTransition   ErrCode = "ILLEGAL_TRANSITION"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUploadFailed    ErrCode = "UPLOAD_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "อีเมลหรือรหัสผ่านไม่ถูกต้อง"
	case ErrSessionInvalidated:
		return "เซสชันของคุณสิ้นสุดแล้ว กรุณาเข้าสู่ระบบใหม่"
	case ErrTokenRequired:
		return "กรุณาเข้าสู่ระบบ"
	case ErrTokenInvalid:
		return "โทเคนยืนยันตัวตนไม่ถูกต้อง"
	case ErrTokenExpired:
		return "โทเคนยืนยันตัวตนหมดอายุ"
	case ErrWrongPassword:
		return "รหัสผ่านปัจจุบันไม่ถูกต้อง"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "คุณไม่มีสิทธิ์เข้าถึงข้อมูลนี้"
	case ErrPermissionDenied:
		return "ไม่ได้รับอนุญาต"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "ข้อมูลไม่ถูกต้อง กรุณาตรวจสอบอีกครั้ง"
	case ErrInvalidID:
		return "รูปแบบรหัสไม่ถูกต้อง"
	case ErrInvalidPayload:
		return "รูปแบบข้อมูลที่ส่งมาไม่ถูกต้อง"
	case ErrInvalidGradeLevel:
		return "ระดับชั้นที่สมัครไม่ถูกต้อง"
	case ErrNationalIDMissing:
		return "กรุณาระบุเลขประจำตัวประชาชน"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "ไม่พบข้อมูล"
	case ErrRegistrationNotFound:
		return "ไม่พบข้อมูลการสมัคร"
	case ErrConflict:
		return "ข้อมูลนี้มีอยู่แล้ว"
	case ErrActionForbidden:
		return "ไม่สามารถดำเนินการนี้ได้"

	// ─── Admission ─────────────────────────────────────────────────────
	case ErrDuplicateNationalID:
		return "เลขประจำตัวประชาชนนี้ได้ลงทะเบียนสมัครแล้ว"
	case ErrAdmissionClosed:
		return "ขณะนี้ไม่อยู่ในช่วงเวลารับสมัคร"
	case ErrProgramNotAllowed:
		return "ประเภทห้องเรียนที่เลือกไม่เปิดรับสมัคร"
	case ErrCaptchaInvalid:
		return "รหัสยืนยันไม่ถูกต้อง กรุณากรอกรหัสใหม่"
	case ErrWizardNotFound:
		return "ไม่พบแบบฟอร์มการสมัคร หรือแบบฟอร์มหมดอายุแล้ว"
	case ErrWizardBusy:
		return "กำลังส่งใบสมัคร กรุณารอสักครู่"
	case ErrIllegalTransition:
		return "ไม่สามารถดำเนินการในขั้นตอนนี้ได้"

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "กรุณาเลือกไฟล์"
	case ErrUnsupportedFile:
		return "รองรับเฉพาะไฟล์ PDF, JPEG และ PNG"
	case ErrFileTooLarge:
		return "ไฟล์มีขนาดเกิน 5 MB"
	case ErrUploadFailed:
		return "อัปโหลดไฟล์ไม่สำเร็จ"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "มีการเรียกใช้งานมากเกินไป กรุณาลองใหม่ภายหลัง"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "เกิดข้อผิดพลาดภายในระบบ"
	default:
		return "เกิดข้อผิดพลาดที่ไม่คาดคิด"
	}
}
