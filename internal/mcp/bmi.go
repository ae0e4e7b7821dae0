package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BMIToolName is the name of the body mass index tool.
const BMIToolName = "calculate_bmi"

// NewBMIServer returns a tool server exposing calculate_bmi.
//
// calculate_bmi takes height in metres and weight in kilograms and returns
// the index formatted with two decimals, e.g. 1.75 m and 70 kg yield "22.86".
func NewBMIServer(version string) *ToolServer {
	s := NewToolServer("mcp-server-bmi", version)
	s.AddTool(
		NewTool(BMIToolName, "Calculate BMI from height (m) and weight (kg)",
			SimpleSchema(map[string]string{"height": "float64", "weight": "float64"})),
		handleBMI,
	)

	return s
}

func handleBMI(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	height, ok := args["height"].(float64)
	if !ok {
		return ErrorResult("height must be a number"), nil
	}

	weight, ok := args["weight"].(float64)
	if !ok {
		return ErrorResult("weight must be a number"), nil
	}

	if height <= 0 {
		return ErrorResult("height must be positive"), nil
	}

	return TextResult(fmt.Sprintf("%.2f", weight/(height*height))), nil
}
