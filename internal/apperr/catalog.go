package apperr

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var korean = map[string]string{}

func def(kind Kind, code, format, ko string) Def {
	korean[format] = ko
	return Def{Kind: kind, Code: code, Format: format}
}

var (
	ErrInternal        = def(KindInternal, "internal", "internal error", "처리 중 오류가 발생했습니다.")
	ErrInvalidBody     = def(KindValidation, "invalid_body", "invalid request body", "잘못된 요청입니다.")
	ErrInvalidID       = def(KindValidation, "invalid_id", "invalid %s: %s", "잘못된 %s 값입니다: %s")
	ErrRequired        = def(KindValidation, "required", "%s is required", "%s 항목은 필수입니다.")
	ErrAmountInvalid   = def(KindValidation, "amount_invalid", "amount must be greater than zero", "유효한 금액을 입력해주세요.")
	ErrAdjustmentZero  = def(KindValidation, "adjustment_zero", "adjustment amount must not be zero", "조정 금액은 0이 될 수 없습니다.")
	ErrRateInvalid     = def(KindValidation, "rate_invalid", "discount rate must be between 0 and 100", "할인율은 0에서 100 사이여야 합니다.")
	ErrPriceInvalid    = def(KindValidation, "price_invalid", "price must not be negative", "가격은 0 이상이어야 합니다.")
	ErrQuantityInvalid = def(KindValidation, "quantity_invalid", "quantity must be greater than zero", "수량을 입력해주세요.")
	ErrDuplicate       = def(KindConflict, "duplicate", "%s already exists", "이미 등록된 %s 입니다.")

	ErrQuantityTooLarge = def(KindValidation, "quantity_too_large", "quantity must not exceed %d", "수량은 %d 이하여야 합니다.")
	ErrPriceTooLarge    = def(KindValidation, "price_too_large", "unit price must not exceed %d", "단가는 %d원 이하여야 합니다.")
	ErrAmountTooLarge   = def(KindValidation, "amount_too_large", "amount must not exceed %d", "금액은 %d원을 초과할 수 없습니다.")

	ErrStoreRequired   = def(KindValidation, "store_required", "store_id is required", "가맹점을 선택해주세요.")
	ErrStoreNotFound   = def(KindNotFound, "store_not_found", "store not found", "가맹점을 찾을 수 없습니다.")
	ErrStoreInactive   = def(KindValidation, "store_inactive", "store is inactive", "비활성 가맹점입니다.")
	ErrBrandNotFound   = def(KindNotFound, "brand_not_found", "brand not found", "브랜드를 찾을 수 없습니다.")
	ErrProductNotFound = def(KindNotFound, "product_not_found", "product %s not found", "상품을 찾을 수 없습니다: %s")
	ErrOptionNotFound  = def(KindNotFound, "option_not_found", "product option %s not found", "재고 옵션을 찾을 수 없습니다: %s")

	ErrItemsRequired       = def(KindValidation, "items_required", "order must contain at least one item", "상품을 추가해주세요.")
	ErrOrderTypeInvalid    = def(KindValidation, "order_type_invalid", "unknown order type %q", "알 수 없는 주문 유형입니다: %q")
	ErrOrderIDsRequired    = def(KindValidation, "order_ids_required", "select at least one order", "주문을 선택해주세요.")
	ErrStatusInvalid       = def(KindValidation, "status_invalid", "unknown order status %q", "알 수 없는 주문 상태입니다: %q")
	ErrOrderNotFound       = def(KindNotFound, "order_not_found", "order %s not found", "주문을 찾을 수 없습니다: %s")
	ErrNotConfirmable      = def(KindBusinessRule, "not_confirmable", "order %s is not in a confirmable state (current: %s)", "주문 %s 은(는) 확정할 수 없는 상태입니다 (현재: %s)")
	ErrNotShippable        = def(KindBusinessRule, "not_shippable", "order %s is not in a shippable state (current: %s)", "주문 %s 은(는) 출고할 수 없는 상태입니다 (현재: %s)")
	ErrNotDeliverable      = def(KindBusinessRule, "not_deliverable", "order %s is not in a deliverable state (current: %s)", "주문 %s 은(는) 배송완료 처리할 수 없는 상태입니다 (현재: %s)")
	ErrNotCancellable      = def(KindBusinessRule, "not_cancellable", "order %s is not in a cancellable state (current: %s)", "주문 %s 은(는) 취소할 수 없는 상태입니다 (현재: %s)")
	ErrOrderHasReturns     = def(KindBusinessRule, "order_has_returns", "order %s has returns and cannot be cancelled", "반품 내역이 있는 주문은 취소할 수 없습니다: %s")
	ErrCreditLimitExceeded = Def{Kind: KindBusinessRule, Code: "credit_limit_exceeded", Format: "credit limit exceeded", Status: http.StatusBadRequest}

	ErrReasonRequired      = def(KindValidation, "reason_required", "adjustment reason is required", "조정 사유를 입력해주세요.")
	ErrAdjustmentsRequired = def(KindValidation, "adjustments_required", "no adjustments given", "조정 항목이 없습니다.")

	ErrReturnNotFound       = def(KindNotFound, "return_not_found", "return %s not found", "반품을 찾을 수 없습니다: %s")
	ErrReturnNotRequested   = def(KindBusinessRule, "return_not_requested", "return is not awaiting approval (current: %s)", "승인 대기 상태가 아닙니다 (현재: %s)")
	ErrReturnNotApproved    = def(KindBusinessRule, "return_not_approved", "return is not approved (current: %s)", "승인된 상태가 아닙니다 (현재: %s)")
	ErrReturnOrderNotBooked = def(KindBusinessRule, "return_order_not_booked", "order %s has not been booked (current: %s)", "확정되지 않은 주문은 반품할 수 없습니다: %s (현재: %s)")
	ErrReturnItemInvalid    = def(KindValidation, "return_item_invalid", "order item %s does not belong to the order", "주문에 포함되지 않은 품목입니다: %s")
	ErrReturnQtyExceeds     = def(KindValidation, "return_quantity_exceeds", "return quantity %.1f exceeds ordered quantity %.1f", "반품 수량 %.1f 이(가) 주문 수량 %.1f 을(를) 초과합니다.")
	ErrReturnActionInvalid  = def(KindValidation, "return_action_invalid", "unknown return action %q", "잘못된 액션입니다: %q")
	ErrReturnTypeInvalid    = def(KindValidation, "return_type_invalid", "unknown return type %q", "알 수 없는 반품 유형입니다: %q")

	ErrSupplierNotFound = def(KindNotFound, "supplier_not_found", "supplier not found", "매입처를 찾을 수 없습니다.")
	ErrPurchaseNotFound = def(KindNotFound, "purchase_not_found", "purchase %s not found", "매입 주문을 찾을 수 없습니다: %s")
	ErrPurchaseNotOpen  = def(KindBusinessRule, "purchase_not_open", "purchase %s is not open (current: %s)", "진행 중인 매입 주문이 아닙니다: %s (현재: %s)")

	ErrTaxInvoiceNotFound      = def(KindNotFound, "tax_invoice_not_found", "tax invoice %s not found", "세금계산서를 찾을 수 없습니다: %s")
	ErrTaxInvoiceStatusInvalid = def(KindValidation, "tax_invoice_status_invalid", "unknown tax invoice status %q", "알 수 없는 세금계산서 상태입니다: %q")
	ErrTaxInvoiceTransition    = def(KindBusinessRule, "tax_invoice_transition", "tax invoice %s cannot move from %s to %s", "세금계산서 %s 은(는) %s 에서 %s (으)로 변경할 수 없습니다.")

	ErrStaffNotFound = def(KindNotFound, "staff_not_found", "staff member not found", "직원을 찾을 수 없습니다.")
	ErrPasswordWeak  = def(KindValidation, "password_weak", "password must be at least %d characters", "비밀번호는 %d자 이상이어야 합니다.")

	ErrInvalidCredentials = Def{Kind: KindValidation, Code: "invalid_credentials", Format: "invalid credentials", Status: http.StatusUnauthorized}
	ErrPrintUnavailable   = Def{Kind: KindInternal, Code: "print_unavailable", Format: "print server unavailable", Status: http.StatusBadGateway}
)

func init() {
	korean[ErrCreditLimitExceeded.Format] = "신용한도를 초과합니다."
	korean[ErrInvalidCredentials.Format] = "이메일 또는 비밀번호가 올바르지 않습니다."
	korean[ErrPrintUnavailable.Format] = "프린터 서버에 연결할 수 없습니다."
	for format, ko := range korean {
		_ = message.SetString(language.Korean, format, ko)
	}
}

var supported = []language.Tag{language.Korean, language.English}

var matcher = language.NewMatcher(supported)

// Negotiate picks the response language from an Accept-Language header.
func Negotiate(acceptLanguage string, fallback language.Tag) language.Tag {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Localize renders the user-facing message of err. Internal causes are never exposed.
func Localize(err error, tag language.Tag) string {
	e, ok := As(err)
	if !ok {
		e = ErrInternal.New()
	}
	return message.NewPrinter(tag).Sprintf(e.Format, e.Args...)
}
