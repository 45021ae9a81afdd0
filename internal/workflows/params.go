package workflows

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// decodeParams maps an action's raw parameters onto a typed struct. Input is
// decoded weakly since values may arrive as JSON numbers or strings.
func decodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build params decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
