package model

type OrderOrigin string

const (
	OriginGrab    OrderOrigin = "GRAB"
	OriginBooking OrderOrigin = "BOOKING"
)

type OrderState string

const (
	// Grab path: OPEN -> CLAIMED -> CONFIRMED -> COMPLETED.
	// A timed-out claim drops the order back to OPEN; an order whose
	// scheduled date passes while still OPEN ends as EXPIRED.
	OrderOpen    OrderState = "OPEN"
	OrderClaimed OrderState = "CLAIMED"

	// Booking path: BOOKING_PENDING -> CONFIRMED | REJECTED.
	OrderBookingPending OrderState = "BOOKING_PENDING"

	OrderConfirmed OrderState = "CONFIRMED"
	OrderCompleted OrderState = "COMPLETED"
	OrderRejected  OrderState = "REJECTED"
	OrderExpired   OrderState = "EXPIRED"
)

type BookingDecision string

const (
	DecisionAccept BookingDecision = "accept"
	DecisionReject BookingDecision = "reject"
)
