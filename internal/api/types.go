package api

import (
	"github.com/samcharles93/glfm/pkg/glfm"
)

type InferRequest struct {
	X      Matrix      `json:"x"`
	Types  string      `json:"types"`
	Params glfm.Params `json:"params"`
	Z      Matrix      `json:"z,omitempty"`
}

type StateResponse struct {
	ID        string      `json:"id"`
	Object    string      `json:"object"`
	CreatedAt int64       `json:"created_at"`
	Types     string      `json:"types"`
	N         int         `json:"n"`
	D         int         `json:"d"`
	K         int         `json:"k"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Z         Matrix      `json:"z"`
	Mu        []float64   `json:"mu"`
	W         []float64   `json:"w"`
	S2Y       []float64   `json:"s2y"`
	R         []int       `json:"r"`
	Offset    []float64   `json:"offset"`
	Labels    [][]float64 `json:"labels,omitempty"`
	Params    glfm.Params `json:"params"`
}

type DeleteStateResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type MAPRequest struct {
	Z    Matrix `json:"z"`
	Dims []int  `json:"dims,omitempty"`
}

type MAPResponse struct {
	Object string `json:"object"`
	Dims   []int  `json:"dims"`
	X      Matrix `json:"x"`
}

type PDFRequest struct {
	// X is the data that fixes the support grid. It defaults to the data
	// the state was learned from.
	X    Matrix `json:"x,omitempty"`
	Dim  int    `json:"dim"`
	Z    Matrix `json:"z"`
	NumS *int   `json:"num_s,omitempty"`
}

type PDFResponse struct {
	Object string    `json:"object"`
	Dim    int       `json:"dim"`
	Grid   []float64 `json:"grid"`
	PDF    Matrix    `json:"pdf"`
}

type CompleteRequest struct {
	X      Matrix      `json:"x"`
	Types  string      `json:"types"`
	Params glfm.Params `json:"params"`
	Z      Matrix      `json:"z,omitempty"`
}

type CompleteResponse struct {
	Object string `json:"object"`
	// Completed is false when X had no missing cells and was returned as is.
	Completed bool   `json:"completed"`
	StateID   string `json:"state_id,omitempty"`
	X         Matrix `json:"x"`
}

type PatternsRequest struct {
	Z Matrix `json:"z"`
}

type PatternsResponse struct {
	Object   string `json:"object"`
	Patterns Matrix `json:"patterns"`
	Assign   []int  `json:"assign"`
	Counts   []int  `json:"counts"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}
