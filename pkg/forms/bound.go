package forms

import "github.com/Megloux/mosaic/pkg/formstore"

// Store-bound variants of every control. Mount them with a store, form ID and
// field name instead of wiring value and change handlers by hand.
var (
	FormInput         = formstore.Bind[string](NewTextInput, formstore.KindInput)
	FormTextarea      = formstore.Bind[string](NewTextarea, formstore.KindTextarea)
	FormSelect        = formstore.Bind[string](NewSelectInput, formstore.KindSelect)
	FormCheckboxGroup = formstore.Bind[[]string](NewCheckboxGroup, formstore.KindCheckboxGroup)
	FormTimeInput     = formstore.Bind[string](NewTimeInput, formstore.KindTimeInput)
	FormNumberInput   = formstore.Bind[float64](NewNumberInput, formstore.KindNumberInput)
	FormSwitch        = formstore.Bind[bool](NewSwitch, formstore.KindSwitch)
)
