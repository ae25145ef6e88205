package metrics_server

import "strconv"

// BuildResponse frames body as a complete HTTP/1.1 200 response. The
// Content-Length is the byte length of body.
func BuildResponse(body []byte) []byte {
	length := strconv.Itoa(len(body))

	resp := make([]byte, 0, 96+len(length)+len(body))
	resp = append(resp, "HTTP/1.1 200 OK\r\n"...)
	resp = append(resp, "Content-Length: "...)
	resp = append(resp, length...)
	resp = append(resp, "\r\nContent-Type: text/plain\r\nConnection: close\r\n\r\n"...)
	resp = append(resp, body...)
	return resp
}
