package shipping

// Status is the lifecycle state of a shipping order detail row.
type Status string

const (
	StatusPaymentComplete  Status = "PAYMENT_COMPLETE"
	StatusShippingReady    Status = "SHIPPING_READY"
	StatusShipping         Status = "SHIPPING"
	StatusShippingComplete Status = "SHIPPING_COMPLETE"
	StatusPurchaseConfirm  Status = "PURCHASE_CONFIRM"
	StatusReturnRequest    Status = "RETURN_REQUEST"
	StatusCancelled        Status = "CANCELLED"
)
