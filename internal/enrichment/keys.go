package enrichment

// Canonical metadata keys understood by the reservation system.
const (
	KeySKU                     = "_sku"
	KeyAdults                  = "_adults"
	KeyKids                    = "_kids"
	KeyComboDescription        = "_combo_description"
	KeyComboQuantity           = "_combo_quantity"
	KeyNeedTransportation      = "_need_transportation"
	KeyTransportationSchedules = "_transportation_schedules"
	KeyTourDate                = "_tour_date"
	KeyTourSchedule            = "_tour_schedule"
	KeyAddress                 = "_address"
	KeyLocation                = "_location"
)

type transform int

const (
	copyValue transform = iota
	dateValue
	timeValue
)

type rule struct {
	key       string
	transform transform
}

// displayKeyRules maps storefront labels (English and Spanish) to canonical keys.
// Matching is exact and case-sensitive.
var displayKeyRules = map[string]rule{
	"SKU": {KeySKU, copyValue},

	"Adults":  {KeyAdults, copyValue},
	"Adultos": {KeyAdults, copyValue},

	"Children": {KeyKids, copyValue},
	"Niños":    {KeyKids, copyValue},

	"Description": {KeyComboDescription, copyValue},
	"Descripción": {KeyComboDescription, copyValue},

	"Quantity": {KeyComboQuantity, copyValue},
	"Cantidad": {KeyComboQuantity, copyValue},

	"Pick-up Place":    {KeyNeedTransportation, copyValue},
	"Lugar de Reunión": {KeyNeedTransportation, copyValue},

	"Pick-up Schedule": {KeyTransportationSchedules, timeValue},
	"Hora de Salida":   {KeyTransportationSchedules, timeValue},

	"Tour Date":             {KeyTourDate, dateValue},
	"Fecha de la Actividad": {KeyTourDate, dateValue},

	"Tour Schedule":           {KeyTourSchedule, timeValue},
	"Horario de la Actividad": {KeyTourSchedule, timeValue},

	"Pick-up Address": {KeyAddress, copyValue},
	"Domicilio":       {KeyAddress, copyValue},

	"Pick-up Location": {KeyLocation, copyValue},
	"Ubicación":        {KeyLocation, copyValue},

	// labels used by the previous storefront theme
	"Activity Date":           {KeyTourDate, dateValue},
	"Fecha de la actividad":   {KeyTourDate, dateValue},
	"Pick Up Schedule":        {KeyTourSchedule, timeValue},
	"Horario de la actividad": {KeyTourSchedule, timeValue},
}
