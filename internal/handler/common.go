package handler // handler defines http handlers

import (
    "errors"  // errors provides the sentinel returned by getUserID
    "strconv" // strconv converts strings to numeric types

    "github.com/labstack/echo/v4" // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores the subject claim under "user_id"; depending on
// how the token was decoded the value may arrive as any numeric type or a
// string.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pageParams reads ?page= and ?page_size= query parameters with defaults.
func pageParams(c echo.Context) (int, int) {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    size, _ := strconv.Atoi(c.QueryParam("page_size"))
    if size < 1 || size > 100 {
        size = 20
    }
    return page, size
}
